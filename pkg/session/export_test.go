package session

import "time"

var WithClock = withClock

func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

func (s *RedisStore) SetClock(now func() time.Time) { s.now = now }
