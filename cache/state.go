package cache

import (
	"bytes"
	"io/ioutil"
	"os"

	"github.com/ugorji/go/codec"
)

var jsonHandle = &codec.JsonHandle{}

func loadState(path string) (state, error) {
	var st state
	ser, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return st, CacheIOError.New("cannot read cache state %q: %s", path, err)
	}
	if err := codec.NewDecoderBytes(ser, jsonHandle).Decode(&st); err != nil {
		return st, CacheIOError.New("corrupt cache state %q: %s", path, err)
	}
	return st, nil
}

// Writes to a sibling temp file and renames over, so a crash never leaves half a state file.
func saveState(path string, st state) error {
	var buf bytes.Buffer
	if err := codec.NewEncoder(&buf, jsonHandle).Encode(st); err != nil {
		return CacheIOError.New("cannot serialize cache state: %s", err)
	}
	tmp := path + ".tmp"
	if err := ioutil.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return CacheIOError.New("cannot write cache state %q: %s", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return CacheIOError.New("cannot write cache state %q: %s", path, err)
	}
	return nil
}
