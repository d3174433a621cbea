package tts

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// The Edge read-aloud service speaks a framed websocket protocol: text
// frames carry CRLF-separated headers, binary frames carry a big-endian
// header length followed by headers and an audio payload.
const (
	edgeEndpoint     = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"
	edgeClientToken  = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	edgeOutputFormat = "audio-24khz-48kbitrate-mono-mp3"
	edgeOrigin       = "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold"
	edgeUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

type socketConn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, data []byte, err error)
	SetReadDeadline(t time.Time) error
	Close() error
}

type socketDialer interface {
	DialContext(ctx context.Context, urlStr string, header http.Header) (socketConn, error)
}

type gorillaDialer struct {
	dialer *websocket.Dialer
}

func (d gorillaDialer) DialContext(ctx context.Context, urlStr string, header http.Header) (socketConn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, urlStr, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// EdgeClient synthesizes speech through the Edge read-aloud service.
type EdgeClient struct {
	dialer socketDialer
	newID  func() string
}

// EdgeOption configures an EdgeClient.
type EdgeOption func(*EdgeClient)

// WithEdgeDialer overrides the websocket dialer, mainly for tests.
func WithEdgeDialer(dialer socketDialer) EdgeOption {
	return func(c *EdgeClient) { c.dialer = dialer }
}

// NewEdgeClient creates a client for the Edge speech service.
func NewEdgeClient(opts ...EdgeOption) *EdgeClient {
	c := &EdgeClient{
		dialer: gorillaDialer{dialer: &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
		}},
		newID: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Speak synthesizes text with the given voice and returns MP3 audio. An
// empty rate keeps the voice's natural speed. ErrNoAudio is returned when
// the service closes the turn without sending audio.
func (c *EdgeClient) Speak(ctx context.Context, text, voice, rate string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("edge speak: %w", ErrEmptyText)
	}

	connID := c.newID()
	url := fmt.Sprintf("%s?TrustedClientToken=%s&ConnectionId=%s", edgeEndpoint, edgeClientToken, connID)

	header := http.Header{}
	header.Set("Origin", edgeOrigin)
	header.Set("User-Agent", edgeUserAgent)
	header.Set("Pragma", "no-cache")
	header.Set("Cache-Control", "no-cache")

	conn, err := c.dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("edge speak: dial %s: %w", edgeEndpoint, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("edge speak: set deadline: %w", err)
		}
	}

	if err := conn.WriteMessage(websocket.TextMessage, speechConfigMessage()); err != nil {
		return nil, fmt.Errorf("edge speak: send config: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, ssmlMessage(c.newID(), text, voice, rate)); err != nil {
		return nil, fmt.Errorf("edge speak: send ssml: %w", err)
	}

	var audio []byte
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("edge speak: read: %w", err)
		}

		switch messageType {
		case websocket.TextMessage:
			if bytes.Contains(data, []byte("Path:turn.end")) {
				if len(audio) == 0 {
					return nil, fmt.Errorf("edge speak: voice %s: %w", voice, ErrNoAudio)
				}
				return audio, nil
			}
		case websocket.BinaryMessage:
			audio = append(audio, audioPayload(data)...)
		}
	}
}

// audioPayload extracts the audio bytes from a binary frame, or nil when
// the frame carries no audio path.
func audioPayload(frame []byte) []byte {
	if len(frame) < 2 {
		return nil
	}
	headerLen := int(binary.BigEndian.Uint16(frame[:2]))
	if len(frame) < 2+headerLen {
		return nil
	}
	// Match the Path header line exactly: metadata frames carry
	// "Path:audio.metadata", whose payload is not audio.
	header := frame[2 : 2+headerLen]
	for _, line := range bytes.Split(header, []byte("\r\n")) {
		if bytes.Equal(line, []byte("Path:audio")) {
			return frame[2+headerLen:]
		}
	}
	return nil
}

func speechConfigMessage() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "X-Timestamp:%s\r\n", edgeTimestamp())
	b.WriteString("Content-Type:application/json; charset=utf-8\r\n")
	b.WriteString("Path:speech.config\r\n\r\n")
	fmt.Fprintf(&b,
		`{"context":{"synthesis":{"audio":{"metadataoptions":{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},"outputFormat":%q}}}}`,
		edgeOutputFormat)
	return []byte(b.String())
}

func ssmlMessage(requestID, text, voice, rate string) []byte {
	if rate == "" {
		rate = "+0%"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "X-RequestId:%s\r\n", requestID)
	b.WriteString("Content-Type:application/ssml+xml\r\n")
	fmt.Fprintf(&b, "X-Timestamp:%s\r\n", edgeTimestamp())
	b.WriteString("Path:ssml\r\n\r\n")
	fmt.Fprintf(&b,
		"<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'>"+
			"<voice name='%s'><prosody pitch='+0Hz' rate='%s' volume='+0%%'>%s</prosody></voice></speak>",
		voice, rate, escapeSSML(text))
	return []byte(b.String())
}

var ssmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

func escapeSSML(text string) string {
	return ssmlEscaper.Replace(text)
}

func edgeTimestamp() string {
	return time.Now().UTC().Format("Mon Jan 02 2006 15:04:05") + " GMT+0000 (Coordinated Universal Time)"
}
