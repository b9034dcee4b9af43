package app

import (
	"fmt"
	"sort"
	"strings"

	"tradebook/internal/config"
	"tradebook/internal/mapping"
	"tradebook/internal/trade"
)

type StartupSummary struct {
	ClassificationMode string
	MappingSource      string
	GlobalMappings     int
	InstrumentMappings map[string]int
	Sinks              []string
	Listeners          []string
}

func newStartupSummary(cfg *config.Config, tables *mapping.Tables) *StartupSummary {
	s := &StartupSummary{
		ClassificationMode: cfg.Booking.ClassificationMode,
		MappingSource:      cfg.Mapping.Path,
		InstrumentMappings: make(map[string]int),
	}
	if s.MappingSource == "" {
		s.MappingSource = "(embedded default)"
	}
	if tables != nil {
		s.GlobalMappings = tables.Global().Len()
		for _, inst := range trade.Instruments() {
			s.InstrumentMappings[string(inst)] = tables.Instrument(inst).Len()
		}
	}
	if cfg.Output.Enabled {
		s.Sinks = append(s.Sinks, "file:"+cfg.Output.Dir+"/"+cfg.Output.FilePattern)
	}
	if cfg.Store.Enabled {
		s.Sinks = append(s.Sinks, "sqlite:"+cfg.Store.Path)
	}
	if cfg.Queue.Enabled {
		s.Sinks = append(s.Sinks, "redis:"+cfg.Queue.Addr+"/"+cfg.Queue.Topic)
	}
	if cfg.HTTP.Enabled {
		s.Listeners = append(s.Listeners, "http "+cfg.HTTP.Addr)
	}
	if cfg.Inbox.Enabled {
		s.Listeners = append(s.Listeners, "inbox "+cfg.Inbox.Dir)
	}
	return s
}

func (s *StartupSummary) String() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 80) + "\n")
	title := "启动配置摘要 (STARTUP SUMMARY)"
	fmt.Fprintf(&b, "%*s\n", 40+len(title)/2, title)
	b.WriteString(strings.Repeat("=", 80) + "\n")

	b.WriteString("[分类与映射 (CLASSIFICATION / MAPPING)]\n")
	fmt.Fprintf(&b, "  分类模式: %s\n", s.ClassificationMode)
	fmt.Fprintf(&b, "  映射来源: %s\n", s.MappingSource)
	fmt.Fprintf(&b, "  全局映射: %d\n", s.GlobalMappings)
	names := make([]string, 0, len(s.InstrumentMappings))
	for name := range s.InstrumentMappings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "    - %-9s %d\n", name, s.InstrumentMappings[name])
	}
	b.WriteString("\n[输出 (SINKS)]\n")
	fmt.Fprintf(&b, "  %s\n", formatList(s.Sinks))
	b.WriteString("\n[监听 (LISTENERS)]\n")
	fmt.Fprintf(&b, "  %s\n", formatList(s.Listeners))
	b.WriteString(strings.Repeat("=", 80) + "\n")
	return b.String()
}

func (s *StartupSummary) Print() {
	fmt.Print(s.String())
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "(无)"
	}
	return strings.Join(items, ", ")
}
