package ratelimiter

import "time"

var WithClock = withClock

func (rs *RedisStore) SetClock(now func() time.Time) { rs.now = now }
