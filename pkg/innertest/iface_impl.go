// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package innertest

import (
	"github.com/q191201771/tunerpsi/pkg/mpegts"
	"github.com/q191201771/tunerpsi/pkg/psip"
	"github.com/q191201771/tunerpsi/pkg/tsparser"
)

// 数据流向:
//
// TsParser.FeedTsData -> mpegts.FeedPackets -> mpegts.SectionStream(IPacketStream)
//   -> psip.SectionParser(ISectionSink) -> TsParser(ISectionParserObserver) -> IOutputObserver

var (
	_ mpegts.IPacketStream = &mpegts.SectionStream{}
	_ mpegts.ISectionSink  = &psip.SectionParser{}
)

var (
	_ tsparser.ITsParser = &tsparser.TsParser{}
	_ tsparser.ITsParser = &tsparser.SyncTsParser{}
)
