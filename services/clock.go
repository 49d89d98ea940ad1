package services

import "time"

// Clock 时钟抽象，便于在测试中控制时间
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// NewSystemClock 返回基于系统时间的时钟
func NewSystemClock() Clock {
	return systemClock{}
}
