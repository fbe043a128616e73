package storage

import (
	"errors"
	"fmt"
)

var errEmptyURL = errors.New("storage returned an empty URL")

type errShortWrite struct {
	want, got int64
}

func (e errShortWrite) Error() string {
	return fmt.Sprintf("stored %d of %d bytes", e.got, e.want)
}
