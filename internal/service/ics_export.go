package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"staff-attendance/internal/model"
)

// ── iCalendar 导出 ──
//
// 每条课表生成一个每周重复的 VEVENT，DTSTART 为本周（周日起算）对应星期的本地时刻。

const icsProductID = "-//staff-attendance//schedule//EN"

func (s *scheduleService) ExportICS(ctx context.Context, teacherID string) ([]byte, error) {
	list, err := s.repo.Schedule.List(ctx, "", teacherID)
	if err != nil {
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, err
	}
	return []byte(buildCalendar(list, s.now())), nil
}

// buildCalendar 将课表渲染为 iCalendar 文本
func buildCalendar(list []model.Schedule, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName("Teaching Schedule")

	weekStart := time.Date(now.Year(), now.Month(), now.Day()-int(now.Weekday()), 0, 0, 0, 0, now.Location())

	for i := range list {
		sch := &list[i]
		start, end, ok := occurrence(weekStart, sch)
		if !ok {
			continue
		}

		event := cal.AddEvent(sch.ScheduleID + "@staff-attendance")
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(eventSummary(sch))
		if sch.Room != "" {
			event.SetLocation(sch.Room)
		}
		if sch.Teacher != nil {
			event.SetDescription(fmt.Sprintf("Teacher: %s", sch.Teacher.Name))
		}
		event.AddProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY")
	}
	return cal.Serialize()
}

// occurrence 计算本周中该课表的起止时刻
func occurrence(weekStart time.Time, sch *model.Schedule) (time.Time, time.Time, bool) {
	offset := -1
	for i, d := range model.Weekdays {
		if d == sch.Day {
			offset = i
			break
		}
	}
	if offset < 0 {
		return time.Time{}, time.Time{}, false
	}
	st, err1 := time.Parse(clockLayout, sch.StartTime)
	et, err2 := time.Parse(clockLayout, sch.EndTime)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	y, m, d := weekStart.Date()
	loc := weekStart.Location()
	start := time.Date(y, m, d+offset, st.Hour(), st.Minute(), 0, 0, loc)
	end := time.Date(y, m, d+offset, et.Hour(), et.Minute(), 0, 0, loc)
	return start, end, true
}

func eventSummary(sch *model.Schedule) string {
	parts := []string{sch.CourseID}
	if sch.CourseName != "" {
		parts = append(parts, sch.CourseName)
	}
	return strings.Join(parts, " ")
}
