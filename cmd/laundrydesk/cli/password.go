package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/laundrydesk/laundrydesk/internal/auth"
)

// ErrEmptyPassword is returned when no password was supplied on stdin.
var ErrEmptyPassword = errors.New("hash-password: empty password")

// HashPassword reads one line from in and writes its bcrypt hash to out,
// ready to paste into ADMIN_PASSWORD_HASH.
func HashPassword(in io.Reader, out io.Writer) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return ErrEmptyPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
