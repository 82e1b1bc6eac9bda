// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package psip 解析MPEG-2 PSI、ATSC PSIP以及DVB SI的section
//
// 输入是已经重组完成的单个section（见 mpegts.SectionStream），输出是各种表的条目。
// descriptor只解析填充条目字段所必需的几种，其他的按tag/length跳过。
package psip

import "github.com/q191201771/tunerpsi/pkg/base"

var Log = base.Log
