package storage

// Extension is the file extension every table file must carry.
const Extension = "rtdb"

// Handle is the storage capability a table is given. The engine never opens
// files itself; it only reads and rewrites the content behind a Handle.
type Handle interface {
	// Write replaces the whole content.
	Write(text string) error
	// Append adds text at the end of the current content.
	Append(text string) error
	// Read returns the whole content.
	Read() (string, error)
	// Extension returns the extension of the backing file, without the dot.
	Extension() string
}
