package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"
)

const base64LineLen = 76

// Build renders msg as an RFC 5322 message with CRLF line endings.
func Build(from string, msg Message, date time.Time) ([]byte, error) {
	var buf bytes.Buffer

	header := textproto.MIMEHeader{}
	header.Set("From", from)
	header.Set("To", strings.Join(msg.To, ", "))
	header.Set("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header.Set("Date", date.Format(time.RFC1123Z))
	header.Set("MIME-Version", "1.0")

	if len(msg.Inline) == 0 {
		contentType, body := bodyPart(msg)
		header.Set("Content-Type", contentType)
		header.Set("Content-Transfer-Encoding", "quoted-printable")
		writeHeader(&buf, header)
		if err := writeQuotedPrintable(&buf, body); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	header.Set("Content-Type", fmt.Sprintf(`multipart/related; boundary="%s"; type="text/html"`, mw.Boundary()))
	writeHeader(&buf, header)

	contentType, body := bodyPart(msg)
	pw, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeQuotedPrintable(pw, body); err != nil {
		return nil, err
	}

	for _, part := range msg.Inline {
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType(part.ContentType, map[string]string{"name": part.Filename})},
			"Content-Transfer-Encoding": {"base64"},
			"Content-ID":                {"<" + part.ContentID + ">"},
			"Content-Disposition":       {mime.FormatMediaType("inline", map[string]string{"filename": part.Filename})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(pw, part.Data); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func bodyPart(msg Message) (string, string) {
	if msg.HTMLBody != "" {
		return "text/html; charset=UTF-8", msg.HTMLBody
	}
	return "text/plain; charset=UTF-8", msg.TextBody
}

func writeHeader(w *bytes.Buffer, h textproto.MIMEHeader) {
	for _, key := range []string{"From", "To", "Subject", "Date", "MIME-Version", "Content-Type", "Content-Transfer-Encoding"} {
		if v := h.Get(key); v != "" {
			fmt.Fprintf(w, "%s: %s\r\n", key, v)
		}
	}
	w.WriteString("\r\n")
}

func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > base64LineLen {
		if _, err := io.WriteString(w, encoded[:base64LineLen]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[base64LineLen:]
	}
	_, err := io.WriteString(w, encoded+"\r\n")
	return err
}

func writeQuotedPrintable(w io.Writer, s string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := io.WriteString(qp, s); err != nil {
		return err
	}
	return qp.Close()
}
