/*
	Package privilege works out who actually invoked dwight through sudo,
	and lets root-running code temporarily act as that person.

	Fetching and caching happens as the invoker, so that their credentials
	are used and the files in their cache belong to them.  Only mounting
	and chrooting happen as root.
*/
package privilege

import (
	"os"
	"os/user"
	"strconv"

	"github.com/spacemonkeygo/errors"
	"golang.org/x/sys/unix"

	"polydawn.net/dwight/def"
)

var IdentityError *errors.ErrorClass = def.RuntimeError.NewClass("IdentityError")

/*
	Identity describes the invoking user.

	Uid and Gid are nil when dwight wasn't run through sudo; in that case
	there's nobody to switch to and `AsInvoker` runs its function directly.
*/
type Identity struct {
	Uid      *int
	Gid      *int
	Groups   []int  // supplementary groups of the invoker.
	Username string // empty if the uid has no passwd entry.
	Home     string
}

/*
	Builds the invoking identity from `SUDO_UID` and `SUDO_GID`, as looked up
	with `lookupEnv` (usually `os.LookupEnv`).

	Username, home, and groups come from the user database.  A sudo uid
	with no passwd entry is allowed; those fields are just left empty.
*/
func FromEnviron(lookupEnv func(string) (string, bool)) (Identity, error) {
	var id Identity
	uid, err := envInt(lookupEnv, "SUDO_UID")
	if err != nil {
		return id, err
	}
	gid, err := envInt(lookupEnv, "SUDO_GID")
	if err != nil {
		return id, err
	}
	id.Uid, id.Gid = uid, gid

	var u *user.User
	if uid != nil {
		u, err = user.LookupId(strconv.Itoa(*uid))
	} else {
		u, err = user.Current()
	}
	if err != nil {
		// no passwd entry; nothing more to learn.
		return id, nil
	}
	id.Username = u.Username
	id.Home = u.HomeDir
	if uid == nil {
		return id, nil
	}
	if gid == nil {
		if g, err := strconv.Atoi(u.Gid); err == nil {
			id.Gid = &g
		}
	}
	groupIds, err := u.GroupIds()
	if err == nil {
		for _, s := range groupIds {
			g, err := strconv.Atoi(s)
			if err != nil {
				continue
			}
			id.Groups = append(id.Groups, g)
		}
	}
	return id, nil
}

func envInt(lookupEnv func(string) (string, bool), name string) (*int, error) {
	s, ok := lookupEnv(name)
	if !ok || s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, IdentityError.New("%s=%q is not a number", name, s)
	}
	return &n, nil
}

// True if there's someone other than the current process to act as.
func (id Identity) IsSudo() bool {
	return id.Uid != nil
}

/*
	Environment for external tools run on the invoker's behalf, so they find
	the invoker's ssh keys and config files rather than root's.
*/
func (id Identity) CommandEnv() map[string]string {
	env := map[string]string{}
	if id.Home != "" {
		env["HOME"] = id.Home
	}
	if id.Username != "" {
		env["USER"] = id.Username
		env["LOGNAME"] = id.Username
	}
	return env
}

/*
	Runs `fn` as the invoker, restoring root afterwards whether `fn`
	returns, fails, or panics.

	Real and effective ids are both switched, so tools that look themselves
	up by real uid (ssh finding `~/.ssh`) see the invoker.  The saved ids
	stay root's, which is what lets us switch back.

	Does nothing but call `fn` when there's no sudo identity, or when the
	process isn't effectively root (including calls nested within another
	`AsInvoker`).
*/
func (id Identity) AsInvoker(fn func() error) (err error) {
	if !id.IsSudo() || os.Geteuid() != 0 {
		return fn()
	}
	rgid, egid, sgid := unix.Getresgid()
	ruid, euid, suid := unix.Getresuid()
	if id.Gid != nil {
		if err := unix.Setresgid(*id.Gid, *id.Gid, sgid); err != nil {
			return IdentityError.New("cannot set gid to %d: %s", *id.Gid, err)
		}
	}
	if err := unix.Setresuid(*id.Uid, *id.Uid, 0); err != nil {
		unix.Setresgid(rgid, egid, sgid)
		return IdentityError.New("cannot set uid to %d: %s", *id.Uid, err)
	}
	defer func() {
		// uid first; we need root back before we may change gid.
		if e := unix.Setresuid(ruid, euid, suid); e != nil && err == nil {
			err = IdentityError.New("cannot restore uid: %s", e)
		}
		if e := unix.Setresgid(rgid, egid, sgid); e != nil && err == nil {
			err = IdentityError.New("cannot restore gid: %s", e)
		}
	}()
	return fn()
}
