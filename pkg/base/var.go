// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import "github.com/q191201771/naza/pkg/nazalog"

var Log = nazalog.GetGlobalLogger()

// ----- mpegts --------------------
var (
	// MpegtsMaxSectionSize 单个section的最大长度，超过该长度的section视为损坏
	//
	// ATSC PSIP私有section最大为4096字节，MPEG-2 PSI为1024字节，这里取较大值
	MpegtsMaxSectionSize = 4096
)

// ----- tsparser --------------------
var (
	// TsParserLogDumpDebugMaxNum 对于"频道尚未出现"这类可能大量重复的日志，debug级别时最多打印的次数
	TsParserLogDumpDebugMaxNum = 64
)
