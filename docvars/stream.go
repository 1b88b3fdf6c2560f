package docvars

import (
	"bufio"
	"io"
	"os"

	"github.com/purc-lang/purc/errkind"
	"github.com/purc-lang/purc/variant"
)

// streamOps wraps a *bufio.Reader/Writer pair as the native vtable for
// $STREAM.stdin/$STREAM.stdout, the only two streams spec.md's minimal
// scope needs — a host embedding this module can add more by the same
// NewCallable/native-variant pattern.
var streamOps = &variant.NativeOps{
	PropertyGetter: func(ptr any, name string) (variant.Variant, *errkind.Error) {
		s := ptr.(*namedStream)
		switch name {
		case "read_line":
			return NewCallable(func(args []variant.Variant) (variant.Variant, *errkind.Error) {
				if s.reader == nil {
					return nil, errkind.New(errkind.NotAllowed, "stream %q is not readable", s.name)
				}
				line, readErr := s.reader.ReadString('\n')
				if readErr != nil && readErr != io.EOF {
					return nil, errkind.New(errkind.ExternalFailure, "STREAM.%s.read_line: %v", s.name, readErr)
				}
				return variant.NewString(line), nil
			}), nil
		case "write":
			return NewCallable(func(args []variant.Variant) (variant.Variant, *errkind.Error) {
				if s.writer == nil {
					return nil, errkind.New(errkind.NotAllowed, "stream %q is not writable", s.name)
				}
				text, strErr := oneString("STREAM."+s.name+".write", args)
				if strErr != nil {
					return nil, strErr
				}
				if _, writeErr := s.writer.WriteString(text); writeErr != nil {
					return nil, errkind.New(errkind.ExternalFailure, "STREAM.%s.write: %v", s.name, writeErr)
				}
				if flushErr := s.writer.Flush(); flushErr != nil {
					return nil, errkind.New(errkind.ExternalFailure, "STREAM.%s.write: %v", s.name, flushErr)
				}
				return variant.UndefinedValue, nil
			}), nil
		default:
			return nil, errkind.New(errkind.NotExists, "stream %q has no property %q", s.name, name)
		}
	},
}

type namedStream struct {
	name   string
	reader *bufio.Reader
	writer *bufio.Writer
}

func newStream() *variant.ObjectVariant {
	stdin := variant.NewNative("stream", &namedStream{name: "stdin", reader: bufio.NewReader(os.Stdin)}, streamOps)
	stdout := variant.NewNative("stream", &namedStream{name: "stdout", writer: bufio.NewWriter(os.Stdout)}, streamOps)
	return object(map[string]variant.Variant{
		"stdin":  stdin,
		"stdout": stdout,
	})
}
