package selfupdate

import (
	"io"
	"io/fs"
	"os"
)

// File is a writable file created by FileSystem.Create.
type File interface {
	io.Writer
	Sync() error
	Close() error
}

// FileSystem is the set of filesystem operations the update protocol uses.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	Create(name string, perm fs.FileMode) (File, error)
	Chmod(name string, perm fs.FileMode) error
	Remove(name string) error
	Rename(oldpath, newpath string) error
}

// OSFileSystem implements FileSystem on the host filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (OSFileSystem) Create(name string, perm fs.FileMode) (File, error) {
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
}

func (OSFileSystem) Chmod(name string, perm fs.FileMode) error {
	return os.Chmod(name, perm)
}

func (OSFileSystem) Remove(name string) error {
	return os.Remove(name)
}

func (OSFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}
