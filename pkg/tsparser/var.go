// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package tsparser 从TS流中提取PSI/PSIP/SI表，并将PAT、PMT、VCT、SDT、EIT、ETT关联成完整的频道和节目信息
package tsparser

import "github.com/q191201771/tunerpsi/pkg/base"

var Log = base.Log
