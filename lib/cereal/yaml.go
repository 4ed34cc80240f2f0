/*
	Package cereal has helpers for reading YAML documents into
	codec-tagged structs.

	YAML is parsed into generic maps and slices first, then bounced through
	CBOR so the struct tags of the ugorji codec apply, the same tags the
	cache state file and the chroot plan are written with.
*/
package cereal

import (
	"bytes"
	"fmt"

	"github.com/ugorji/go/codec"
)

/*
	Replaces leading tabs on every line with two spaces each.
	YAML refuses tabs for indentation; people type them anyway.
*/
func Tab2space(x []byte) []byte {
	lines := bytes.Split(x, []byte{'\n'})
	for i, line := range lines {
		n := 0
		for n < len(line) && line[n] == '\t' {
			n++
		}
		if n > 0 {
			lines[i] = append(bytes.Repeat([]byte("  "), n), line[n:]...)
		}
	}
	return bytes.Join(lines, []byte{'\n'})
}

/*
	Rewrites `map[interface{}]interface{}` (as the yaml parser produces)
	into `map[string]interface{}`, recursively, so the codec can take it.
	Non-string keys are formatted with `fmt.Sprint`.
*/
func StringifyMapKeys(value interface{}) interface{} {
	switch value := value.(type) {
	case map[interface{}]interface{}:
		next := make(map[string]interface{}, len(value))
		for k, v := range value {
			next[fmt.Sprint(k)] = StringifyMapKeys(v)
		}
		return next
	case []interface{}:
		for i := range value {
			value[i] = StringifyMapKeys(value[i])
		}
		return value
	default:
		return value
	}
}

var bounceHandle = func() *codec.CborHandle {
	h := &codec.CborHandle{}
	h.ErrorIfNoField = true
	return h
}()

/*
	Decodes generic data (maps with string keys, slices, scalars) into
	`target` by way of CBOR.  Fields in the data that `target` has no
	place for are an error.
*/
func Bounce(value interface{}, target interface{}) error {
	var buf bytes.Buffer
	if err := codec.NewEncoder(&buf, bounceHandle).Encode(value); err != nil {
		return err
	}
	return codec.NewDecoder(&buf, bounceHandle).Decode(target)
}
