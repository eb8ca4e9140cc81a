package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryObjectStorage_UploadAndDownload(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryObjectStorage("")

	data := []byte("%PDF-1.4 receipt")
	require.NoError(t, store.Upload(ctx, "receipts/INV-1.pdf", data, "application/pdf"))
	data[0] = 'X'

	obj, ok := store.Get("receipts/INV-1.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF-1.4 receipt", string(obj.Data))
	assert.Equal(t, "application/pdf", obj.ContentType)

	url, expiresAt, err := store.GenerateDownloadURL(ctx, "receipts/INV-1.pdf", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, url, "memory://receipts/receipts/INV-1.pdf")
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryObjectStorage_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryObjectStorage("http://files.local")

	assert.Error(t, store.Upload(ctx, "", nil, "text/plain"))

	_, _, err := store.GenerateDownloadURL(ctx, "missing", 0)
	assert.Error(t, err)

	assert.Equal(t, 0, store.Len())
}
