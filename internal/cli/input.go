package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/querygraph/internal/schema"
	"github.com/roach88/querygraph/internal/vqg"
)

// stdinName is the argument that selects stdin, and the name reported
// for it.
const stdinName = "-"

// InputError is returned when command input cannot be read or decoded.
type InputError struct {
	Code    string
	Message string
	Err     error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// readInput reads the file named by args[0], or stdin when there is no
// argument or it is "-".
func readInput(cmd *cobra.Command, args []string) (data []byte, name string, err error) {
	if len(args) == 0 || args[0] == stdinName {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, stdinName, &InputError{Code: ErrCodeReadFailed, Message: "failed to read stdin", Err: err}
		}
		return data, stdinName, nil
	}

	name = args[0]
	data, err = os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, name, &InputError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", name)}
	}
	if err != nil {
		return nil, name, &InputError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("failed to read %s", name), Err: err}
	}
	return data, name, nil
}

func isCUE(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".cue")
}

// graphInput turns a graph document into the JSON text handed to the
// translator. JSON input is passed through unchanged unless a data
// source rewrites it; CUE input is evaluated and encoded.
func graphInput(data []byte, name, source string) (string, error) {
	if !isCUE(name) && source == "" {
		if _, err := vqg.DecodeConnections(data); err != nil {
			return "", &InputError{Code: ErrCodeDecode, Message: fmt.Sprintf("invalid graph %s", name), Err: err}
		}
		return string(data), nil
	}

	var conns []vqg.Connection
	var err error
	if isCUE(name) {
		conns, err = schema.LoadCUE(data, filepath.Base(name))
	} else {
		conns, err = vqg.DecodeConnections(data)
	}
	if err != nil {
		return "", &InputError{Code: ErrCodeDecode, Message: fmt.Sprintf("invalid graph %s", name), Err: err}
	}

	if source != "" {
		ds, ok := vqg.KnownDataSources[source]
		if !ok {
			return "", &InputError{
				Code:    ErrCodeGeneric,
				Message: fmt.Sprintf("unknown source %q (known: %s)", source, strings.Join(vqg.DataSourceNames(), ", ")),
			}
		}
		conns = vqg.ApplyDataSource(conns, ds)
	}

	out, err := vqg.EncodeConnections(conns)
	if err != nil {
		return "", &InputError{Code: ErrCodeDecode, Message: "failed to encode graph", Err: err}
	}
	return out, nil
}

// failInput reports an input error through f with exit code 2.
func failInput(f *OutputFormatter, err error) error {
	var inErr *InputError
	if errors.As(err, &inErr) {
		msg := inErr.Message
		if inErr.Err != nil {
			msg = fmt.Sprintf("%s: %v", inErr.Message, inErr.Err)
		}
		return f.Fail(ExitCommandError, inErr.Code, msg, nil)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}
