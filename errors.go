package getconfig

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes reported by the Code method of each error type.
const (
	ErrCodeDirNotFound     = "EDIRNOTFOUND"
	ErrCodeFileNotFound    = "EFILENOTFOUND"
	ErrCodeUnsetEnvVar     = "EUNSETENVVAR"
	ErrCodeInvalidType     = "EINVALIDTYPE"
	ErrCodeConversion      = "ECONVERSION"
	ErrCodeMissingProperty = "EMISSINGPROPERTY"
)

var (
	// ErrLayerNotFound is returned by a LayerSource that has no data for a layer.
	ErrLayerNotFound = errors.New("getconfig: layer not found")

	// ErrConversion is wrapped by every coercion failure.
	ErrConversion = errors.New("invalid value")

	// ErrTypeRegistered is returned when registering a type name twice.
	ErrTypeRegistered = errors.New("getconfig: type already registered")
)

// DirNotFoundError reports that no config directory exists above Start.
type DirNotFoundError struct {
	Start string
}

func (e *DirNotFoundError) Error() string {
	if e.Start == "" {
		return "unable to find a config directory"
	}
	return fmt.Sprintf("unable to find a config directory above %s", e.Start)
}

func (e *DirNotFoundError) Code() string { return ErrCodeDirNotFound }

// FileNotFoundError reports that none of the candidate layers exist.
type FileNotFoundError struct {
	Layers []string // Layer names that were attempted
}

func (e *FileNotFoundError) Error() string {
	if len(e.Layers) == 0 {
		return "no config files found"
	}
	return fmt.Sprintf("no config files found (tried: %s)", strings.Join(e.Layers, ", "))
}

func (e *FileNotFoundError) Code() string { return ErrCodeFileNotFound }

// UnsetEnvVarError reports a required or interpolated variable that is not set.
type UnsetEnvVarError struct {
	Name string
}

func (e *UnsetEnvVarError) Error() string {
	return fmt.Sprintf("unable to resolve environment variable $%s", e.Name)
}

func (e *UnsetEnvVarError) Code() string { return ErrCodeUnsetEnvVar }

// InvalidTypeError reports a placeholder naming a type missing from the registry.
type InvalidTypeError struct {
	Type string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid type specified: %s", e.Type)
}

func (e *InvalidTypeError) Code() string { return ErrCodeInvalidType }

// ConversionError reports a coercion failure for a specific variable.
type ConversionError struct {
	Name string // Variable name without the sigil
	Type string // Coercion type name
	Err  error  // Underlying failure
}

func (e *ConversionError) Error() string {
	msg := "unable to convert environment variable"
	if e.Name != "" && e.Type != "" {
		msg += fmt.Sprintf(" $%s to %s %s", e.Name, article(e.Type), e.Type)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Code() string { return ErrCodeConversion }

func (e *ConversionError) Unwrap() error { return e.Err }

// Is makes every ConversionError match ErrConversion.
func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// MissingPropertyError reports a self reference whose path is absent from the tree.
type MissingPropertyError struct {
	Path string // Dotted path as written in the reference
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("the requested property %s is not set", e.Path)
}

func (e *MissingPropertyError) Code() string { return ErrCodeMissingProperty }

// ErrorCode returns the code of the first coded error in err's chain, or "".
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiouyAEIOUY", rune(word[0])) {
		return "an"
	}
	return "a"
}
