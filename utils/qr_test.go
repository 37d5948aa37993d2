package utils

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQRCode(t *testing.T) {
	data, err := GenerateQRCode("SL-1A2B3C4D", 256)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestGenerateQRCodeEmptyContent(t *testing.T) {
	_, err := GenerateQRCode("", 128)
	assert.Error(t, err)
}
