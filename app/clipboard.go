package app

import (
	"sync"

	atotto "github.com/atotto/clipboard"
	"golang.design/x/clipboard"
)

var (
	clipboardOnce  sync.Once
	clipboardReady bool
)

// InitClipboard initialises the native clipboard. When it is unavailable the
// atotto command-line backends are used instead.
func InitClipboard() error {
	var err error
	clipboardOnce.Do(func() {
		err = clipboard.Init()
		clipboardReady = err == nil
	})
	return err
}

// WriteClipboard copies text to the system clipboard.
func WriteClipboard(text string) error {
	if clipboardReady {
		clipboard.Write(clipboard.FmtText, []byte(text))
		return nil
	}
	return atotto.WriteAll(text)
}
