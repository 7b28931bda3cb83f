package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
	"go.uber.org/zap"

	"github.com/LuizAugustoFH-77/Trivion/internal/game"
)

// QRCode serves a PNG QR code pointing a phone at the room's join URL.
func (a *API) QRCode(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if _, ok := a.registry.Find(code); !ok {
		writeError(w, game.ErrRoomNotFound)
		return
	}

	joinURL := a.baseURL(r) + "/?room=" + code
	png, err := renderQR(joinURL)
	if err != nil {
		a.log.Error("qr render failed", zap.String("room", code), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError,
			map[string]any{"status": "error", "message": "falha ao gerar QR code"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

// baseURL prefers the configured public URL and otherwise reconstructs the
// external base from the request, honoring reverse-proxy headers.
func (a *API) baseURL(r *http.Request) string {
	if a.publicURL != "" {
		return a.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	host := r.Host
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		host = forwarded
	}
	return scheme + "://" + host
}

func renderQR(url string) ([]byte, error) {
	qrc, err := qrcode.NewWith(url,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
		qrcode.WithEncodingMode(qrcode.EncModeByte),
	)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	wr := standard.NewWithWriter(nopCloser{&buf},
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(8),
	)
	if err := qrc.Save(wr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// nopCloser adapts the in-memory buffer to the writer's WriteCloser.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
