// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tunerpsi/pkg/base"
	"github.com/q191201771/tunerpsi/pkg/mpegts"
	"github.com/q191201771/tunerpsi/pkg/psip"
)

// 学习如何从TS文件中拆出section。
// 不使用 tsparser，直接组合 mpegts.FeedPackets、mpegts.SectionStream 以及 psip 中的解析函数，
// 统计每个PID上出现的table_id以及版本号

type tableKey struct {
	pid     uint16
	tableId uint8
}

type tableStat struct {
	count    int
	crcError int
	versions map[uint8]struct{}
}

type Learner struct {
	streams map[uint16]*mpegts.SectionStream
	tables  map[tableKey]*tableStat
}

func NewLearner() *Learner {
	l := &Learner{
		streams: make(map[uint16]*mpegts.SectionStream),
		tables:  make(map[tableKey]*tableStat),
	}
	l.listen(mpegts.PidPat)
	l.listen(mpegts.PidSdt)
	l.listen(mpegts.PidEit)
	l.listen(mpegts.PidAtscSiBase)
	return l
}

func (l *Learner) listen(pid uint16) {
	if _, ok := l.streams[pid]; ok {
		return
	}
	l.streams[pid] = mpegts.NewSectionStream(pid, l, base.MpegtsMaxSectionSize)
}

func (l *Learner) Feed(b []byte) mpegts.FeedStat {
	return mpegts.FeedPackets(b, 0, len(b), func(pid uint16) mpegts.IPacketStream {
		if s, ok := l.streams[pid]; ok {
			return s
		}
		return nil
	})
}

// OnSection 实现 mpegts.ISectionSink
func (l *Learner) OnSection(pid uint16, section []byte) {
	k := tableKey{pid: pid, tableId: section[0]}
	st, ok := l.tables[k]
	if !ok {
		st = &tableStat{versions: make(map[uint8]struct{})}
		l.tables[k] = st
	}
	st.count++
	if !mpegts.VerifyCrc32(section) {
		st.crcError++
		return
	}
	h, err := psip.ParseSectionHeader(section)
	if err != nil {
		nazalog.Warnf("parse section header failed. pid=0x%04x, err=%+v", pid, err)
		return
	}
	st.versions[h.VersionNumber] = struct{}{}

	// 顺着PAT和MGT找到更多的PID
	switch h.TableId {
	case mpegts.TsPsiIdPas:
		items, err := psip.ParsePat(section)
		if err != nil {
			return
		}
		for _, item := range items {
			l.listen(item.PmtPid)
		}
	case mpegts.TsPsiIdMgt:
		items, err := psip.ParseMgt(section)
		if err != nil {
			return
		}
		for _, item := range items {
			if item.IsEitTableType() || item.IsEttTableType() {
				l.listen(item.TablePid)
			}
		}
	}
}

func (l *Learner) Dump() {
	var keys []tableKey
	for k := range l.tables {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].pid != keys[j].pid {
			return keys[i].pid < keys[j].pid
		}
		return keys[i].tableId < keys[j].tableId
	})
	for _, k := range keys {
		st := l.tables[k]
		nazalog.Infof("pid=0x%04x, table_id=0x%02x, sections=%d, crc_error=%d, versions=%d",
			k.pid, k.tableId, st.count, st.crcError, len(st.versions))
	}
}

func main() {
	defer nazalog.Sync()

	if len(os.Args) != 2 {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s <ts file>\n", os.Args[0])
		os.Exit(1)
	}
	content, err := os.ReadFile(os.Args[1])
	nazalog.Assert(nil, err)

	l := NewLearner()
	stat := l.Feed(content)
	nazalog.Infof("feed stat. %+v", stat)
	l.Dump()
}
