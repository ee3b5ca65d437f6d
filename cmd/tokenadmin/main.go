// Command tokenadmin inspects token material without running the server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-token-server/internal/config"
)

func main() {
	_ = godotenv.Load()

	c, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	root := newRootCmd(defaults{
		sqlitePath: c.GetSQLitePath(),
		ttl:        c.GetRefreshTokenExpiry(),
		signingKey: string(c.GetAccessTokenSigningKey()),
		keyID:      c.GetAppName(),
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
