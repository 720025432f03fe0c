package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowserCommand(t *testing.T) {
	assert := assert.New(t)

	const url = "http://localhost:8080"

	cmd := browserCommand("windows", url)
	assert.Equal([]string{"rundll32", "url.dll,FileProtocolHandler", url}, cmd.Args)

	cmd = browserCommand("darwin", url)
	assert.Equal([]string{"open", url}, cmd.Args)

	cmd = browserCommand("linux", url)
	assert.Equal([]string{"xdg-open", url}, cmd.Args)
}

func TestIconEmbedded(t *testing.T) {
	assert.NotEmpty(t, GetIcon())
}
