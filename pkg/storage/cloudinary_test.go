package storage

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPublicID(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712/campus_forum/avatars/abc.webp": "campus_forum/avatars/abc",
		"https://res.cloudinary.com/demo/image/upload/videos/clip.webp":                   "videos/clip",
		"https://res.cloudinary.com/demo/image/upload/v1712/vintage.webp":                 "vintage",
		"https://example.com/no-upload-segment.png":                                       "",
	}
	for in, want := range cases {
		require.Equal(t, want, extractPublicID(in), in)
	}
}

func TestValidateImage(t *testing.T) {
	require.NoError(t, ValidateImage(&multipart.FileHeader{Filename: "qr.PNG", Size: 1024}))
	require.ErrorIs(t, ValidateImage(&multipart.FileHeader{Filename: "qr.svg", Size: 1024}), ErrUnsupportedImage)
	require.ErrorIs(t, ValidateImage(&multipart.FileHeader{Filename: "big.jpg", Size: MaxImageSize + 1}), ErrImageTooLarge)
}
