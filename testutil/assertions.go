package testutil

import (
	"fmt"
	"os"
	"reflect"

	"github.com/spacemonkeygo/errors"
)

/*
	'actual' should be path; 'expected' may be empty (in which case it checks
	that anything with an inode exists) or a filemode (in which case it will
	check for that file type, ignoring all bits outside of the `os.ModeType`
	range; and '0' must be used for plain file (there is no const)).
*/
func ShouldBeFile(actual interface{}, expected ...interface{}) string {
	filename, ok := actual.(string)
	if !ok {
		return "You must provide a filename as the first argument to this assertion."
	}

	info, err := os.Lstat(filename)
	if err != nil {
		// includes if os.IsNotExist(err)
		return err.Error()
	}

	switch len(expected) {
	case 0:
		return ""
	case 1:
		mode, ok := expected[0].(os.FileMode)
		if !ok {
			return "You must provide a FileMode as the second argument to this assertion, if any."
		}
		modeType := info.Mode() & os.ModeType
		if modeType != mode {
			return fmt.Sprintf("Expected file to have mode %v but it had %v instead!", mode, modeType)
		}
		return ""
	default:
		return "You must provide zero or one parameters as expectations to this assertion."
	}
}

/*
	'actual' should be path.  Expects no file (or dir) at path.
*/
func ShouldBeNotFile(actual interface{}, expected ...interface{}) string {
	filename, ok := actual.(string)
	if !ok {
		return "You must provide a filename as the first argument to this assertion."
	}
	if len(expected) != 0 {
		return "You must provide zero parameters as expectations to this assertion."
	}

	info, err := os.Lstat(filename)
	if err == nil {
		return fmt.Sprintf("Expected file not to exist but it had mode %v instead!", info.Mode()&os.ModeType)
	}
	if os.IsNotExist(err) {
		return ""
	}
	return err.Error()
}

/*
	'actual' should be an `error`; 'expected' should be an `*errors.ErrorClass`;
	we'll check that the error is under the umbrella of the error class.
*/
func ShouldBeErrorClass(actual interface{}, expected ...interface{}) string {
	if len(expected) != 1 {
		return "You must provide one spacemonkey `ErrorClass` as the expectation parameter to this assertion."
	}
	class, ok := expected[0].(*errors.ErrorClass)
	if !ok {
		return "You must provide a spacemonkey `ErrorClass` as the expectation parameter to this assertion."
	}

	if actual == nil {
		return fmt.Sprintf("Expected error to be of class %q but it was nil!", class.String())
	}
	err, ok := actual.(error)
	if !ok {
		return fmt.Sprintf("You must provide an `error` as the first argument to this assertion; got `%T`", actual)
	}
	// checking if this is nil is surprisingly complicated due to https://golang.org/doc/faq#nil_error
	if v := reflect.ValueOf(err); v.Kind() == reflect.Ptr && v.IsNil() {
		return fmt.Sprintf("Expected error to be of class %q but it was nil!", class.String())
	}

	spaceClass := errors.GetClass(err)
	if spaceClass.Is(class) {
		return ""
	}
	return fmt.Sprintf("Expected error to be of class %q but it had %q instead!  (Full message: %s)", class.String(), spaceClass.String(), err.Error())
}
