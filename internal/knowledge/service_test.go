package knowledge

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestdesk/internal/model"
)

// fakeStore implements DocumentStore and ChunkStore in memory with the
// same tenant scoping the gorm repositories enforce.
type fakeStore struct {
	docs      []model.Document
	chunks    []model.Chunk
	nextDocID uint
	failAll   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextDocID: 1}
}

var errStorage = errors.New("storage down")

func (f *fakeStore) CreateWithChunks(doc *model.Document, chunks []model.Chunk) error {
	if f.failAll {
		return errStorage
	}
	doc.ID = f.nextDocID
	f.nextDocID++
	f.docs = append(f.docs, *doc)
	for i := range chunks {
		chunks[i].DocumentID = doc.ID
		chunks[i].TenantID = doc.TenantID
		f.chunks = append(f.chunks, chunks[i])
	}
	return nil
}

func (f *fakeStore) ListByTenantID(tenantID uint) ([]model.Document, error) {
	if f.failAll {
		return nil, errStorage
	}
	var out []model.Document
	for _, d := range f.docs {
		if d.TenantID == tenantID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByIDAndTenantID(id, tenantID uint) (*model.Document, error) {
	for _, d := range f.docs {
		if d.ID == id && d.TenantID == tenantID {
			doc := d
			return &doc, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) DeleteByIDAndTenantID(id, tenantID uint) error {
	f.docs = deleteDocs(f.docs, func(d model.Document) bool { return d.ID == id && d.TenantID == tenantID })
	f.chunks = deleteChunks(f.chunks, func(c model.Chunk) bool { return c.DocumentID == id && c.TenantID == tenantID })
	return nil
}

func (f *fakeStore) DeleteByTenantID(tenantID uint) error {
	if f.failAll {
		return errStorage
	}
	f.docs = deleteDocs(f.docs, func(d model.Document) bool { return d.TenantID == tenantID })
	f.chunks = deleteChunks(f.chunks, func(c model.Chunk) bool { return c.TenantID == tenantID })
	return nil
}

func (f *fakeStore) SearchByTokens(tenantID uint, tokens []string, limit int) ([]model.Chunk, error) {
	if f.failAll {
		return nil, errStorage
	}
	var out []model.Chunk
	for _, c := range f.chunks {
		if c.TenantID != tenantID {
			continue
		}
		lowered := strings.ToLower(c.Text)
		for _, token := range tokens {
			if strings.Contains(lowered, strings.ToLower(token)) {
				out = append(out, c)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func deleteDocs(in []model.Document, match func(model.Document) bool) []model.Document {
	var out []model.Document
	for _, d := range in {
		if !match(d) {
			out = append(out, d)
		}
	}
	return out
}

func deleteChunks(in []model.Chunk, match func(model.Chunk) bool) []model.Chunk {
	var out []model.Chunk
	for _, c := range in {
		if !match(c) {
			out = append(out, c)
		}
	}
	return out
}

func newTestService(store *fakeStore, mode Mode) *Service {
	return NewService(store, store, mode, 5, 500, 50)
}

func TestIngest_SmallDocumentSingleChunk(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, ModeHybrid)

	doc, count, err := svc.Ingest(1, FileInput{Name: "程序.txt", Data: []byte("婚礼将在下午2点开始")})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "程序.txt", doc.OriginalName)
	assert.Equal(t, "txt", doc.Format)

	require.Len(t, store.chunks, 1)
	assert.Equal(t, 0, store.chunks[0].Idx)
	assert.Equal(t, "婚礼将在下午2点开始", store.chunks[0].Text)
	assert.Equal(t, uint(1), store.chunks[0].TenantID)
}

func TestIngest_Validation(t *testing.T) {
	svc := newTestService(newFakeStore(), ModeHybrid)

	_, _, err := svc.Ingest(0, FileInput{Name: "a.txt", Data: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.Ingest(1, FileInput{Name: "a.txt", Data: nil})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.Ingest(1, FileInput{Name: "a.txt", Data: make([]byte, MaxFileSize+1)})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, _, err = svc.Ingest(1, FileInput{Name: "a.exe", Data: []byte("x")})
	assert.Error(t, err)
}

func TestIngestBatch_PartialFailure(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, ModeHybrid)

	results := svc.IngestBatch(1, []FileInput{
		{Name: "one.txt", Data: []byte("场地在三楼宴会厅")},
		{Name: "two.exe", Data: []byte("binary")},
		{Name: "three.md", Data: []byte("停车场入口在北门")},
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Len(t, store.docs, 2)
}

func TestReplaceAll(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, ModeHybrid)

	_, _, err := svc.Ingest(1, FileInput{Name: "old.txt", Data: []byte("旧版流程")})
	require.NoError(t, err)

	results, err := svc.ReplaceAll(1, []FileInput{{Name: "new.txt", Data: []byte("新版流程")}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)

	require.Len(t, store.docs, 1)
	assert.Equal(t, "new.txt", store.docs[0].OriginalName)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), ModeHybrid)
	assert.ErrorIs(t, svc.DeleteDocument(1, 42), ErrNotFound)
}

func TestRetrieve_KeywordMatchesCJKCharacter(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, ModeKeyword)

	_, _, err := svc.Ingest(1, FileInput{Name: "程序.txt", Data: []byte("婚礼将在下午2点开始")})
	require.NoError(t, err)

	result := svc.Retrieve(1, "几点")
	assert.False(t, result.Empty())
	assert.Equal(t, ModeKeyword, result.Mode)
	assert.Contains(t, result.Text, "婚礼将在下午2点开始")
}

func TestRetrieve_TenantIsolation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, ModeKeyword)

	_, _, err := svc.Ingest(1, FileInput{Name: "a.txt", Data: []byte("晚宴六点开始")})
	require.NoError(t, err)
	_, _, err = svc.Ingest(2, FileInput{Name: "b.txt", Data: []byte("晚宴七点开始")})
	require.NoError(t, err)

	result := svc.Retrieve(1, "晚宴")
	assert.Contains(t, result.Text, "六点")
	assert.NotContains(t, result.Text, "七点")
}

func TestRetrieve_EmptyTokensEmptyResult(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, ModeKeyword)
	result := svc.Retrieve(1, "?!")
	assert.True(t, result.Empty())
}

func TestRetrieve_HybridFallsBackToFulltext(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, ModeHybrid)

	_, _, err := svc.Ingest(1, FileInput{Name: "menu.txt", Data: []byte("主菜是烤鸭")})
	require.NoError(t, err)

	result := svc.Retrieve(1, "xyzzy")
	assert.Equal(t, ModeFulltext, result.Mode)
	assert.Contains(t, result.Text, "# menu.txt")
	assert.Contains(t, result.Text, "主菜是烤鸭")
}

func TestRetrieve_SwallowsStorageErrors(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	svc := newTestService(store, ModeHybrid)

	result := svc.Retrieve(1, "几点")
	assert.True(t, result.Empty())
}

func TestRetrieve_FulltextIgnoresQuery(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, ModeFulltext)

	_, _, err := svc.Ingest(1, FileInput{Name: "a.txt", Data: []byte("第一份")})
	require.NoError(t, err)
	_, _, err = svc.Ingest(1, FileInput{Name: "b.txt", Data: []byte("第二份")})
	require.NoError(t, err)

	result := svc.Retrieve(1, "")
	assert.Contains(t, result.Text, "第一份")
	assert.Contains(t, result.Text, "第二份")
	// upload order preserved, newest last
	assert.Less(t, strings.Index(result.Text, "第一份"), strings.Index(result.Text, "第二份"))
}

func TestParseMode(t *testing.T) {
	for raw, want := range map[string]Mode{"keyword": ModeKeyword, "fulltext": ModeFulltext, "hybrid": ModeHybrid, "": ModeHybrid} {
		got, err := ParseMode(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("vector")
	assert.Error(t, err)
}
