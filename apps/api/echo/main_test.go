package echoapi

import (
	"os"
	"testing"

	"github.com/edutoken/dapp/core"
)

func TestMain(m *testing.M) {
	core.Conf.Set("debug", false)
	core.Conf.Set("testMode", true)

	os.Exit(m.Run())
}
