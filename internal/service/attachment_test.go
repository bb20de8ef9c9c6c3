package service

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/boardadmin/boardadmin/internal/dbtest"
	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/boardadmin/boardadmin/internal/repository"
	"github.com/boardadmin/boardadmin/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storedNamePattern = regexp.MustCompile(`^[0-9a-f]{32}_report\.pdf$`)

type attachmentFixture struct {
	service *AttachmentService
	posts   repository.PostRepository
	attRepo repository.AttachmentRepository
	storage storage.Storage
	root    string
}

func newAttachmentFixture(t *testing.T, wrap func(storage.Storage) storage.Storage) *attachmentFixture {
	t.Helper()

	database := dbtest.New(t)
	root := filepath.Join(t.TempDir(), "files")
	require.NoError(t, storage.EnsureDir(root))

	local, err := storage.NewLocalStorage(root)
	require.NoError(t, err)

	var store storage.Storage = local
	if wrap != nil {
		store = wrap(local)
	}

	posts := repository.NewPostRepository(database)
	attRepo := repository.NewAttachmentRepository(database)

	return &attachmentFixture{
		service: NewAttachmentService(attRepo, posts, store, 20),
		posts:   posts,
		attRepo: attRepo,
		storage: store,
		root:    root,
	}
}

func (f *attachmentFixture) post(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.posts.Create(&model.Post{ID: id, UserID: "u1", Title: "post " + id}))
}

func (f *attachmentFixture) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.root)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStoreListDeleteReport(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	f.post(t, "42")

	content := []byte("hello world!")
	require.Len(t, content, 12)

	a, err := f.service.Store(bytes.NewReader(content), "report.pdf", "42")
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", a.OriginalName)
	assert.Equal(t, "42", a.PostID)
	assert.Equal(t, int64(12), a.Size)
	assert.Regexp(t, storedNamePattern, a.StoredName)
	assert.Equal(t, filepath.Join(f.root, a.StoredName), a.StoragePath)

	onDisk, err := os.ReadFile(a.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)

	list, err := f.service.ListByPost("42")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	require.NoError(t, f.service.Delete(a.ID))

	_, err = os.Stat(a.StoragePath)
	assert.True(t, os.IsNotExist(err))

	_, err = f.service.ByID(a.ID)
	assert.ErrorIs(t, err, ErrAttachmentNotFound)
}

func TestStoreRoundTrip(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	f.post(t, "p1")

	large := make([]byte, 1<<20)
	_, err := rand.Read(large)
	require.NoError(t, err)

	contents := map[string][]byte{
		"empty.txt": {},
		"small.txt": []byte("a"),
		"large.bin": large,
	}

	for name, content := range contents {
		t.Run(name, func(t *testing.T) {
			stored, err := f.service.Store(bytes.NewReader(content), name, "p1")
			require.NoError(t, err)

			got, err := f.service.ByID(stored.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(len(content)), got.Size)

			_, rc, err := f.service.Open(stored.ID)
			require.NoError(t, err)
			defer func() { _ = rc.Close() }()

			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(content, data))
		})
	}
}

// trackingReader records whether anything tried to read it
type trackingReader struct {
	read bool
}

func (r *trackingReader) Read(p []byte) (int, error) {
	r.read = true
	return 0, io.EOF
}

func TestStoreInvalidParentHasNoSideEffects(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	f.post(t, "exists")

	content := &trackingReader{}
	_, err := f.service.Store(content, "report.pdf", "missing")
	require.ErrorIs(t, err, ErrInvalidParent)

	assert.False(t, content.read)
	assert.Empty(t, f.files(t))

	count, err := f.attRepo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteTwice(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	f.post(t, "p1")

	a, err := f.service.Store(strings.NewReader("data"), "a.txt", "p1")
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(a.ID))

	err = f.service.Delete(a.ID)
	require.ErrorIs(t, err, ErrAttachmentNotFound)
	assert.NotErrorIs(t, err, ErrStorageDelete)
}

func TestDeleteWithFileAlreadyGone(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	f.post(t, "p1")

	a, err := f.service.Store(strings.NewReader("data"), "a.txt", "p1")
	require.NoError(t, err)
	require.NoError(t, os.Remove(a.StoragePath))

	require.NoError(t, f.service.Delete(a.ID))

	_, err = f.service.ByID(a.ID)
	assert.ErrorIs(t, err, ErrAttachmentNotFound)
}

func TestListByPostReturnsExactlyThePostsAttachments(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	f.post(t, "a")
	f.post(t, "b")

	var want []string
	for i := range 3 {
		att, err := f.service.Store(strings.NewReader("a"), "a.txt", "a")
		require.NoError(t, err, "store %d", i)
		want = append(want, att.ID)
	}
	for range 2 {
		_, err := f.service.Store(strings.NewReader("b"), "b.txt", "b")
		require.NoError(t, err)
	}

	got, err := f.service.ListByPost("a")
	require.NoError(t, err)

	var ids []string
	for i, att := range got {
		ids = append(ids, att.ID)
		assert.Equal(t, "a", att.PostID)
		if i > 0 {
			assert.False(t, att.CreatedAt.Before(got[i-1].CreatedAt), "oldest first")
		}
	}
	assert.ElementsMatch(t, want, ids)

	empty, err := f.service.ListByPost("none")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestConcurrentStoresGetDistinctNames(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	f.post(t, "p1")

	const n = 8
	results := make([]*model.Attachment, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			content := strings.Repeat("x", i+1)
			results[i], errs[i] = f.service.Store(strings.NewReader(content), "same.txt", "p1")
		}()
	}
	wg.Wait()

	ids := map[string]bool{}
	names := map[string]bool{}
	for i := range n {
		require.NoError(t, errs[i])
		ids[results[i].ID] = true
		names[results[i].StoredName] = true
		assert.Equal(t, int64(i+1), results[i].Size)
	}
	assert.Len(t, ids, n)
	assert.Len(t, names, n)
	assert.Len(t, f.files(t), n)
}

// faultyStorage fails Save or Delete on demand
type faultyStorage struct {
	storage.Storage
	saveErr   error
	deleteErr error
}

func (s *faultyStorage) Save(name string, r io.Reader) (string, int64, error) {
	if s.saveErr != nil {
		return "", 0, s.saveErr
	}
	return s.Storage.Save(name, r)
}

func (s *faultyStorage) Delete(path string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Storage.Delete(path)
}

func TestStoreWriteFailure(t *testing.T) {
	faulty := &faultyStorage{saveErr: errors.New("disk full")}
	f := newAttachmentFixture(t, func(s storage.Storage) storage.Storage {
		faulty.Storage = s
		return faulty
	})
	f.post(t, "p1")

	_, err := f.service.Store(strings.NewReader("data"), "a.txt", "p1")
	require.ErrorIs(t, err, ErrStorageWrite)
	assert.Contains(t, err.Error(), "disk full")

	count, err := f.attRepo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteStorageFailureKeepsRecord(t *testing.T) {
	faulty := &faultyStorage{}
	f := newAttachmentFixture(t, func(s storage.Storage) storage.Storage {
		faulty.Storage = s
		return faulty
	})
	f.post(t, "p1")

	a, err := f.service.Store(strings.NewReader("data"), "a.txt", "p1")
	require.NoError(t, err)

	faulty.deleteErr = errors.New("permission denied")
	err = f.service.Delete(a.ID)
	require.ErrorIs(t, err, ErrStorageDelete)

	_, err = f.service.ByID(a.ID)
	require.NoError(t, err, "record must survive a failed file delete")

	// Retrying the whole delete succeeds once storage recovers
	faulty.deleteErr = nil
	require.NoError(t, f.service.Delete(a.ID))
}

type resolverFunc func(id string) (bool, error)

func (fn resolverFunc) Exists(id string) (bool, error) {
	return fn(id)
}

func TestStoreRemovesFileWhenRecordFails(t *testing.T) {
	f := newAttachmentFixture(t, nil)

	// The resolver claims the post exists but the foreign key rejects the row
	svc := NewAttachmentService(f.attRepo, resolverFunc(func(string) (bool, error) { return true, nil }), f.storage, 20)

	_, err := svc.Store(strings.NewReader("data"), "a.txt", "ghost")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStorageWrite)
	assert.Empty(t, f.files(t))
}

func TestStoreResolverError(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	svc := NewAttachmentService(f.attRepo, resolverFunc(func(string) (bool, error) {
		return false, errors.New("db down")
	}), f.storage, 20)

	_, err := svc.Store(strings.NewReader("data"), "a.txt", "p1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidParent)
	assert.Empty(t, f.files(t))
}

func TestStoredName(t *testing.T) {
	name := StoredName("report.pdf")
	assert.Regexp(t, storedNamePattern, name)
	assert.NotEqual(t, name, StoredName("report.pdf"))

	assert.True(t, strings.HasSuffix(StoredName("../../etc/passwd"), "_passwd"))
	assert.True(t, strings.HasSuffix(StoredName(`C:\Users\me\notes.txt`), "_notes.txt"))
}

func TestStoreKeepsOriginalNameWithPath(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	f.post(t, "p1")

	a, err := f.service.Store(strings.NewReader("data"), "../secret.txt", "p1")
	require.NoError(t, err)

	assert.Equal(t, "../secret.txt", a.OriginalName)
	assert.Equal(t, f.root, filepath.Dir(a.StoragePath))
	assert.True(t, strings.HasSuffix(a.StoredName, "_secret.txt"))
}

func TestListAll(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	f.post(t, "a")
	f.post(t, "b")

	for i := range 5 {
		post := "a"
		if i%2 == 1 {
			post = "b"
		}
		_, err := f.service.Store(strings.NewReader("x"), "f.txt", post)
		require.NoError(t, err)
	}

	page, err := f.service.ListAll(1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext())
	assert.False(t, page.HasPrev())

	last, err := f.service.ListAll(3, 2)
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
	assert.False(t, last.HasNext())

	beyond, err := f.service.ListAll(10, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, beyond.Page, "pages past the end clamp to the last page")
	assert.Len(t, beyond.Items, 1)
	assert.Equal(t, int64(5), beyond.Total)

	huge, err := f.service.ListAll(math.MaxInt, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, huge.Page)
	assert.Len(t, huge.Items, 1)

	defaults, err := f.service.ListAll(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 20, defaults.Size)
	assert.Len(t, defaults.Items, 5)

	capped, err := f.service.ListAll(1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 20, capped.Size)
}

func TestDeleteByPost(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	f.post(t, "a")
	f.post(t, "b")

	for range 3 {
		_, err := f.service.Store(strings.NewReader("x"), "f.txt", "a")
		require.NoError(t, err)
	}
	keep, err := f.service.Store(strings.NewReader("y"), "g.txt", "b")
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteByPost("a"))

	left, err := f.service.ListByPost("a")
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Equal(t, []string{keep.StoredName}, f.files(t))
}
