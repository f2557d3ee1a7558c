package kvcache

// PutRaw exposes putRaw for tests.
func (s *Store) PutRaw(uid string, data []byte) error {
	return s.putRaw(uid, data)
}
