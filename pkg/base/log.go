// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"fmt"

	"github.com/q191201771/naza/pkg/nazalog"
)

// LogDump 限制同一类debug日志的打印次数，trace级别不限制
//
// PSIP表每个周期都会重复，"频道还没收到"这类日志在表齐全之前每个周期都会出现一次
type LogDump struct {
	log         nazalog.Logger
	debugMaxNum int

	debugCount int
	suppressed int
}

// NewLogDump
//
// @param debugMaxNum: 日志级别为debug时最多打印的条数，超过后只计数
func NewLogDump(log nazalog.Logger, debugMaxNum int) LogDump {
	return LogDump{
		log:         log,
		debugMaxNum: debugMaxNum,
	}
}

// ShouldDump 返回false时调用方不要构造日志参数，比如 hex.Dump 一个section
func (ld *LogDump) ShouldDump() bool {
	switch ld.log.GetOption().Level {
	case nazalog.LevelTrace:
		return true
	case nazalog.LevelDebug:
		if ld.debugCount < ld.debugMaxNum {
			ld.debugCount++
			return true
		}
		ld.suppressed++
	}
	return false
}

// Outf 只在 ShouldDump 返回true之后调用
func (ld *LogDump) Outf(format string, v ...interface{}) {
	ld.log.Out(ld.log.GetOption().Level, 3, fmt.Sprintf(format, v...))
}

// Suppressed 超过阈值后被丢弃的条数
func (ld *LogDump) Suppressed() int {
	return ld.suppressed
}

// Reset 重新开始计数
//
// @return: Reset之前被丢弃的条数
func (ld *LogDump) Reset() int {
	n := ld.suppressed
	ld.debugCount = 0
	ld.suppressed = 0
	return n
}
