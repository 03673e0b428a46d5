package reload

import (
	_ "embed"
	"net/http"
)

// ClientScript is the browser side of the reload channel.
//
//go:embed client.js
var ClientScript string

// ScriptTag is the element injected into served HTML pages.
const ScriptTag = `<script type="module" src="/_jig/client.js"></script>`

// ServeClientScript serves ClientScript.
func ServeClientScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(ClientScript))
}
