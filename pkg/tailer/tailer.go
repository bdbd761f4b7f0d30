// Package tailer implements a resumable tail cursor over a periodically
// rotated log file. The cursor persists a (file identity, byte offset)
// pair to a side file so that successive runs only ever see bytes appended
// since the last committed position, including bytes left behind in a
// rotated predecessor of the target file.
package tailer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/directoryops/ldapwatch/pkg/logging"
)

var log = logging.Log.WithName("tailer")

// Position is the durable cursor state: the identity of the file the
// offset refers to, plus the byte offset within that file.
type Position struct {
	// Inode identifies the physical file independent of its path.
	Inode uint64

	// Offset is the byte position of the next unread byte.
	Offset int64
}

// Options configures cursor commit behavior.
type Options struct {
	// Trial suppresses all automatic offset commits (rotation switch,
	// per-line paranoid commits). An explicit Commit still writes.
	Trial bool

	// Paranoid commits the offset file after every delivered line,
	// trading throughput for minimal re-reading after a crash.
	Paranoid bool
}

// Tailer delivers the not-yet-read lines of a log file, following a
// rotated predecessor first when the persisted identity no longer matches
// the file at the target path. Not safe for concurrent use, and no two
// Tailers may share an offset file.
type Tailer struct {
	path       string
	offsetPath string
	trial      bool
	paranoid   bool

	// rotated is the path of the predecessor still being drained, empty
	// once reads come from the current file.
	rotated string

	offset int64
	file   *os.File
	reader *bufio.Reader
}

// Open prepares a cursor for the file at path, resuming from the state in
// offsetPath if present. A missing or empty offset file means start of
// file. Returns an error satisfying os.IsNotExist if the target file does
// not exist.
func Open(path, offsetPath string, opts Options) (*Tailer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	t := &Tailer{
		path:       path,
		offsetPath: offsetPath,
		trial:      opts.Trial,
		paranoid:   opts.Paranoid,
	}

	state, ok, err := readOffsetFile(offsetPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return t, nil
	}

	currentInode, err := inodeOfPath(path)
	if err != nil {
		return nil, err
	}

	if currentInode != 0 && state.Inode != 0 && state.Inode != currentInode {
		// The identity changed underneath us, so the unread tail may live
		// in a rotated predecessor. Resume there if one still matches the
		// persisted identity; otherwise the predecessor is gone and the
		// current file is read from the start.
		t.rotated = findRotated(path, state.Inode)
		if t.rotated != "" {
			log.Info("resuming from rotated predecessor",
				"path", path, "rotated", t.rotated, "offset", state.Offset)
			t.offset = state.Offset
		} else {
			log.Info("detected log rotation without a matching predecessor, restarting from beginning",
				"path", path, "oldInode", state.Inode, "newInode", currentInode)
		}
		return t, nil
	}

	if state.Offset > info.Size() {
		// Matching inodes cannot rule out replacement: filesystems reuse
		// the freed inode when the file is removed and recreated. An
		// offset past EOF means the file we knew is gone.
		log.Info("persisted offset beyond end of file, restarting from beginning",
			"path", path, "offset", state.Offset, "size", info.Size())
		return t, nil
	}

	t.offset = state.Offset
	return t, nil
}

// Rotated reports the rotated predecessor path reads currently come from,
// or "" when reading the target file.
func (t *Tailer) Rotated() string {
	return t.rotated
}

// Position returns the in-memory cursor position. It reflects lines
// already delivered by Next, whether or not they have been committed.
func (t *Tailer) Position() (Position, error) {
	if err := t.ensureOpen(); err != nil {
		return Position{}, err
	}
	ino, err := fileInode(t.file)
	if err != nil {
		return Position{}, err
	}
	return Position{Inode: ino, Offset: t.offset}, nil
}

// Next returns the next unread line with its trailing newline removed.
// When the rotated predecessor is exhausted the cursor switches to the
// current file at offset zero, committing the switch before any
// current-file bytes are delivered (unless in trial mode). io.EOF signals
// end of the unread sequence.
func (t *Tailer) Next() (string, error) {
	line, err := t.readLine()
	if err == io.EOF && t.rotated != "" {
		if serr := t.switchToCurrent(); serr != nil {
			return "", serr
		}
		line, err = t.readLine()
	}
	if err != nil {
		return "", err
	}
	if t.paranoid {
		if err := t.autoCommit(); err != nil {
			return "", err
		}
	}
	return line, nil
}

// ReadAll drains every unread line.
func (t *Tailer) ReadAll() ([]string, error) {
	var lines []string
	for {
		line, err := t.Next()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
}

// Commit durably records the current position: the identity of the file
// being read and the offset of the next unread byte. Callers must not
// commit until every line up to that position has been safely processed.
// Commit writes even in trial mode; only automatic commits are
// suppressed there.
func (t *Tailer) Commit() error {
	pos, err := t.Position()
	if err != nil {
		return err
	}
	return writeOffsetFile(t.offsetPath, pos)
}

// CommitAt durably records an explicit position, for callers that read
// ahead of what they are ready to commit (e.g. stopping at the last
// complete record boundary while a partial record trails it).
func (t *Tailer) CommitAt(pos Position) error {
	return writeOffsetFile(t.offsetPath, pos)
}

// Close releases the underlying file handle. The cursor may be reused;
// the next read reopens at the in-memory offset.
func (t *Tailer) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	t.reader = nil
	return err
}

// switchToCurrent moves the cursor from the drained predecessor to the
// start of the current file, recording the switch before any current-file
// bytes can be delivered so the predecessor tail is never re-read as new
// content.
func (t *Tailer) switchToCurrent() error {
	if err := t.Close(); err != nil {
		return err
	}
	log.V(1).Info("rotated predecessor drained, switching to current file",
		"rotated", t.rotated, "path", t.path)
	t.rotated = ""
	t.offset = 0
	return t.autoCommit()
}

func (t *Tailer) autoCommit() error {
	if t.trial {
		return nil
	}
	return t.Commit()
}

func (t *Tailer) ensureOpen() error {
	if t.file != nil {
		return nil
	}
	name := t.path
	if t.rotated != "" {
		name = t.rotated
	}
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	if t.offset > 0 {
		if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
			f.Close()
			return err
		}
	}
	t.file = f
	t.reader = newLineReader(f)
	return nil
}

// newLineReader sizes the buffer for audit-log lines (folded LDIF values
// can run long).
func newLineReader(r io.Reader) *bufio.Reader {
	return bufio.NewReaderSize(r, 64*1024)
}

// readLine returns the next line without its newline, advancing the
// offset by the raw byte length read. A final line with no trailing
// newline is still delivered; the following call reports io.EOF.
func (t *Tailer) readLine() (string, error) {
	if err := t.ensureOpen(); err != nil {
		return "", err
	}
	line, err := t.reader.ReadString('\n')
	if len(line) == 0 {
		if err == nil {
			err = io.EOF
		}
		return "", err
	}
	t.offset += int64(len(line))
	return strings.TrimSuffix(line, "\n"), nil
}

// readOffsetFile parses the two-line offset state: inode then offset.
func readOffsetFile(path string) (Position, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Position{}, false, nil
		}
		return Position{}, false, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return Position{}, false, nil
	}
	if len(fields) != 2 {
		return Position{}, false, fmt.Errorf("offset file %s: expected two integers, got %d fields", path, len(fields))
	}
	inode, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Position{}, false, fmt.Errorf("offset file %s: parsing inode: %w", path, err)
	}
	offset, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Position{}, false, fmt.Errorf("offset file %s: parsing offset: %w", path, err)
	}
	return Position{Inode: inode, Offset: offset}, true, nil
}

// writeOffsetFile rewrites the offset state in one shot.
func writeOffsetFile(path string, pos Position) error {
	content := fmt.Sprintf("%d\n%d\n", pos.Inode, pos.Offset)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing offset file: %w", err)
	}
	return nil
}
