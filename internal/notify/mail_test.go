package notify

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage_AttachmentIsBase64(t *testing.T) {
	pdf := []byte("%PDF-1.3 fake report body")
	msg, err := buildMessage(&Email{
		From:    "reports@medscan.example",
		To:      "jane@example.com",
		Subject: "Medical Report: Jane Doe",
		Body:    "Dear Patient,",
		Attachments: []Attachment{
			{Name: "Report_P-1001.pdf", ContentType: "application/pdf", Data: pdf},
		},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "Subject: Medical Report: Jane Doe")
	assert.Contains(t, out, "Report_P-1001.pdf")
	assert.Contains(t, out, "application/pdf")
	assert.Contains(t, out, "Content-Transfer-Encoding: base64")
	assert.Contains(t, strings.ReplaceAll(out, "\r\n", ""), base64.StdEncoding.EncodeToString(pdf))
}

func TestBuildMessage_InvalidAddress(t *testing.T) {
	_, err := buildMessage(&Email{From: "reports@medscan.example", To: "not an address"})
	assert.Error(t, err)
}
