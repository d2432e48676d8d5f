package store

import "context"

// MockStore is a test double for Store. Each method delegates to the
// corresponding function field; unset fields return ErrNotFound (fetch,
// delete) or succeed with a fixed pointer (upload).
type MockStore struct {
	UploadFunc func(ctx context.Context, data []byte, filename string) (Pointer, error)
	FetchFunc  func(ctx context.Context, ptr Pointer) ([]byte, error)
	DeleteFunc func(ctx context.Context, ptr Pointer) error
}

var _ Store = (*MockStore)(nil)

func (m *MockStore) Upload(ctx context.Context, data []byte, filename string) (Pointer, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, data, filename)
	}
	return Pointer("mock://" + filename), nil
}

func (m *MockStore) Fetch(ctx context.Context, ptr Pointer) ([]byte, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, ptr)
	}
	return nil, ErrNotFound
}

func (m *MockStore) Delete(ctx context.Context, ptr Pointer) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ptr)
	}
	return nil
}
