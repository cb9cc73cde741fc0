package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFormat is the file name format for the data file inside a snapshot
// directory. The %s is replaced by the directory's trailing token.
const DefaultFormat = "snap_%s.hdf5"

// SnapshotFile returns the data file that lives inside a snapshot directory.
// The directory's base name is split on underscores and its last token is
// reused as the file's suffix, so "output/snapdir_012" becomes
// "output/snapdir_012/snap_012.hdf5" with the default format.
func SnapshotFile(dir, format string) string {
	if format == "" { format = DefaultFormat }

	base := filepath.Base(filepath.Clean(dir))
	tokens := strings.Split(base, "_")
	suffix := tokens[len(tokens) - 1]

	return filepath.Join(dir, fmt.Sprintf(format, suffix))
}

// Loader opens a snapshot given a path.
type Loader func(path string) (Snapshot, error)

// Open opens the snapshot at path. Directories are resolved to their data file
// with SnapshotFile, anything else is opened directly as a Gadget HDF5 file.
// If the data file doesn't exist but its chunks do ("snap_012.0.hdf5",
// "snap_012.1.hdf5", ...), they're opened together as one snapshot.
func Open(path, format string) (Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil { return nil, err }
	if !info.IsDir() { return GadgetHDF5(path) }

	fname := SnapshotFile(path, format)
	if _, err := os.Stat(fname); err == nil { return GadgetHDF5(fname) }

	chunks := ChunkFiles(fname)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s contains neither %s nor its chunks",
			path, filepath.Base(fname))
	}
	return GadgetHDF5Chunks(chunks)
}

// DirLoader returns a Loader which resolves directories with the given format.
func DirLoader(format string) Loader {
	return func(path string) (Snapshot, error) { return Open(path, format) }
}
