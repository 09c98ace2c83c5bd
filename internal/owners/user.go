package owners

import (
	"errors"
	"os"
	"os/user"
)

var userEnvVars = []string{"LOGNAME", "USER", "LNAME", "USERNAME"}

// CurrentUser returns the login name of the invoking user, preferring the
// environment over the password database.
func CurrentUser() (string, error) {
	for _, name := range userEnvVars {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}

	u, err := user.Current()
	if err != nil {
		return "", err
	}
	if u.Username == "" {
		return "", errors.New("current user has no login name")
	}
	return u.Username, nil
}
