package mount

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/inconshreveable/log15"
	"golang.org/x/sys/unix"
)

const loopMajor = 7

/*
	True if the kernel command line sets `max_loop`, in which case the kernel
	pre-creates that many loop devices and we must not make our own.
*/
func MaxLoopConfigured(cmdline string) bool {
	for _, field := range strings.Fields(cmdline) {
		if strings.HasPrefix(field, "max_loop=") {
			return true
		}
	}
	return false
}

/*
	Returns the numbers in [0, count) for which no `<devDir>/loopN` exists.
*/
func MissingLoopDevices(devDir string, count int) []int {
	var missing []int
	for i := 0; i < count; i++ {
		if _, err := os.Lstat(fmt.Sprintf("%s/loop%d", devDir, i)); os.IsNotExist(err) {
			missing = append(missing, i)
		}
	}
	return missing
}

/*
	Makes sure `/dev/loop0` through `/dev/loop<count-1>` exist, creating
	block device nodes for any that don't.  Does nothing if the kernel was
	booted with `max_loop`.
*/
func EnsureLoopDevices(count int, log log15.Logger) error {
	if count <= 0 {
		return nil
	}
	cmdline, err := ioutil.ReadFile("/proc/cmdline")
	if err != nil {
		return Error.New("cannot read kernel command line: %s", err)
	}
	if MaxLoopConfigured(string(cmdline)) {
		log.Debug("kernel sets max_loop; not creating loop devices")
		return nil
	}
	for _, n := range MissingLoopDevices("/dev", count) {
		path := fmt.Sprintf("/dev/loop%d", n)
		log.Info("creating loop device", "path", path)
		if err := unix.Mknod(path, unix.S_IFBLK|0660, int(unix.Mkdev(loopMajor, uint32(n)))); err != nil {
			return Error.New("cannot create %s: %s", path, err)
		}
	}
	return nil
}
