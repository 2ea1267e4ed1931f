package catalog

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardlore/internal/card"
)

// minimalPNG builds the smallest PNG the codec accepts: signature, IHDR,
// IDAT and IEND with valid CRCs.
func minimalPNG() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	writeChunk(&buf, "IHDR", make([]byte, 13))
	writeChunk(&buf, "IDAT", []byte{0x78, 0x9c, 0x01, 0x00})
	writeChunk(&buf, "IEND", nil)
	return buf.Bytes()
}

func writeChunk(buf *bytes.Buffer, tag string, data []byte) {
	binary.Write(buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(tag)
	buf.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(tag))
	crc.Write(data)
	binary.Write(buf, binary.BigEndian, crc.Sum32())
}

func writeCard(t *testing.T, dir, name, jsonText string) string {
	t.Helper()
	data := minimalPNG()
	if jsonText != "" {
		var err error
		data, err = card.NewCodec().WriteMetadata(data, jsonText)
		require.NoError(t, err)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSyncAll_RecordsCards(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	writeCard(t, dir, "mira.png", `{"name": "Mira", "description": "A quiet scholar."}`)
	writeCard(t, dir, "blank.png", "")

	stats, err := SyncAll(db, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 2, stats.Updated)
	assert.Equal(t, 0, stats.Errors)

	row, err := db.GetCardByKey("mira")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Mira", row.Name)
	assert.Equal(t, "A quiet scholar.", row.Summary)
	assert.True(t, row.HasMeta)

	row, err = db.GetCardByKey("blank")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "blank", row.Name, "cards without metadata are named by key")
	assert.False(t, row.HasMeta)
}

func TestSyncAll_SkipsUnchangedFiles(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	writeCard(t, dir, "mira.png", `{"name": "Mira"}`)

	_, err := SyncAll(db, dir)
	require.NoError(t, err)

	stats, err := SyncAll(db, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Updated)
	assert.Equal(t, 1, stats.Skipped)
}

func TestSyncAll_ReinspectsChangedFiles(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	path := writeCard(t, dir, "mira.png", `{"name": "Mira"}`)

	_, err := SyncAll(db, dir)
	require.NoError(t, err)

	writeCard(t, dir, "mira.png", `{"name": "Mira", "description": "Now with a longer story."}`)
	// mtime granularity can hide a rewrite that lands in the same instant
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	stats, err := SyncAll(db, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)

	row, err := db.GetCardByKey("mira")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Now with a longer story.", row.Summary)
}

func TestSyncAll_PrunesVanishedCards(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	path := writeCard(t, dir, "gone.png", "")

	_, err := SyncAll(db, dir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	stats, err := SyncAll(db, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pruned)

	n, err := db.CardCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSyncAll_NestedDirsUseSlashKeys(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	writeCard(t, dir, filepath.Join("fantasy", "elf.png"), "")

	_, err := SyncAll(db, dir)
	require.NoError(t, err)

	row, err := db.GetCardByKey("fantasy/elf")
	require.NoError(t, err)
	require.NotNil(t, row)
}

func TestSyncAll_MissingDirIsEmpty(t *testing.T) {
	db := openTestDB(t)

	stats, err := SyncAll(db, filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Scanned)
}

func TestListCards_FilterAndOrder(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.UpsertCard(CardRow{CardKey: "b", Name: "Briar", Summary: "thorns"}))
	require.NoError(t, db.UpsertCard(CardRow{CardKey: "a", Name: "Willow", Summary: "a river spirit"}))
	require.NoError(t, db.UpsertCard(CardRow{CardKey: "c", Name: "Ash", Summary: ""}))

	all, err := db.ListCards("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Ash", all[0].Name)
	assert.Equal(t, "Briar", all[1].Name)
	assert.Equal(t, "Willow", all[2].Name)

	filtered, err := db.ListCards("river", 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Willow", filtered[0].Name)

	limited, err := db.ListCards("", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestUpsertCard_PreservesConversionFields(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.UpsertCard(CardRow{CardKey: "mira", FilePath: "/x/mira.png"}))
	require.NoError(t, db.MarkConverted("mira", "/out/mira.yaml", "/out/mira.txt", 4, "2026-08-30T00:00:00Z"))

	// a rescan of the same card must not wipe its conversion record
	require.NoError(t, db.UpsertCard(CardRow{CardKey: "mira", FilePath: "/x/mira.png", Mtime: 99}))

	row, err := db.GetCardByKey("mira")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "/out/mira.yaml", row.LorebookPath)
	assert.Equal(t, "/out/mira.txt", row.ProfilePath)
	assert.Equal(t, 4, row.TriggerCount)
	assert.Equal(t, int64(99), row.Mtime)

	converted, err := db.ConvertedCount()
	require.NoError(t, err)
	assert.Equal(t, 1, converted)
}

func TestGetCardByKey_Missing(t *testing.T) {
	db := openTestDB(t)
	row, err := db.GetCardByKey("nope")
	require.NoError(t, err)
	assert.Nil(t, row)
}
