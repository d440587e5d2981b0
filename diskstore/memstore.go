package diskstore

// memBucket is a plain map-backed Bucket, used for in-memory stores (tests,
// or engines opened without a journal path).
type memBucket map[string][]byte

func (b memBucket) Get(k []byte) []byte {
	return b[string(k)]
}

func (b memBucket) Put(k, v []byte) error {
	b[string(k)] = v
	return nil
}

func (b memBucket) Delete(k []byte) error {
	delete(b, string(k))
	return nil
}

func (b memBucket) ForEach(f func(k, v []byte) error) error {
	for k, v := range b {
		if err := f([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

type memStore struct {
	buckets map[string]memBucket
}

func newMemStore() *memStore {
	return &memStore{buckets: make(map[string]memBucket)}
}

func (s *memStore) Path() string {
	return "memory"
}

func (s *memStore) Bucket(name string) (Bucket, error) {
	b, ok := s.buckets[name]
	if !ok {
		b = make(memBucket)
		s.buckets[name] = b
	}
	return b, nil
}

func (s *memStore) Close() error {
	clear(s.buckets)
	return nil
}
