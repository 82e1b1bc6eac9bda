// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"bufio"
	"context"
	"errors"
	"os"

	"github.com/asticode/go-astits"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tunerpsi/pkg/psip"
	"github.com/q191201771/tunerpsi/pkg/tsparser"
)

// crossCheck 用astits重新解析文件中的PMT，和 TsParser 的结果做对比，只打印差异
//
// @param programs: TsParser 关联上以及没有关联上的所有节目
//
// @return 不一致的节目数
func crossCheck(ctx context.Context, filename string, programs map[uint16][]psip.PmtItem) (int, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer fp.Close()

	pmts := make(map[uint16]*astits.PMTData)
	dmx := astits.NewDemuxer(ctx, bufio.NewReader(fp))
	for {
		d, err := dmx.NextData()
		if err != nil {
			if errors.Is(err, astits.ErrNoMorePackets) {
				break
			}
			return 0, err
		}
		if d.PMT != nil {
			pmts[d.PMT.ProgramNumber] = d.PMT
		}
	}

	diff := 0
	for programNumber, pmt := range pmts {
		items, ok := programs[programNumber]
		if !ok {
			nazalog.Warnf("cross check. program missing. program_number=%d", programNumber)
			diff++
			continue
		}
		if !sameStreams(pmt, items) {
			nazalog.Warnf("cross check. streams mismatch. program_number=%d, astits=%d, tsparser=%s",
				programNumber, len(pmt.ElementaryStreams), stringifyPmtItems(items))
			diff++
		}
	}
	nazalog.Infof("cross check done. astits programs=%d, diff=%d", len(pmts), diff)
	return diff, nil
}

func sameStreams(pmt *astits.PMTData, items []psip.PmtItem) bool {
	if len(pmt.ElementaryStreams) != len(items) {
		return false
	}
	for i, es := range pmt.ElementaryStreams {
		if es.ElementaryPID != items[i].EsPid || uint8(es.StreamType) != items[i].StreamType {
			return false
		}
	}
	return true
}

// collectPrograms 合并observer回调过的节目以及 TsParser 中没有关联上的节目
func collectPrograms(o *Observer, malformed []tsparser.MalFormedChannel) map[uint16][]psip.PmtItem {
	ret := make(map[uint16][]psip.PmtItem)
	for k, v := range o.Programs() {
		ret[k] = v
	}
	for _, c := range malformed {
		if c.PmtItems != nil {
			ret[c.ProgramNumber] = c.PmtItems
		}
	}
	return ret
}
