// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package tsparser

import (
	"sort"

	"github.com/q191201771/tunerpsi/pkg/base"
	"github.com/q191201771/tunerpsi/pkg/mpegts"
	"github.com/q191201771/tunerpsi/pkg/psip"
)

// IOutputObserver 关联完成后的结果回调
//
// 所有回调都在 TsParser.FeedTsData 的调用栈中同步执行。回调参数是内部数据的拷贝，observer可以持有。
type IOutputObserver interface {
	// OnPatParsed 收到PAT就回调，不做任何关联
	OnPatParsed(items []psip.PatItem)

	// OnEitPidDetected MGT中出现了新的EIT PID，每个PID只回调一次
	OnEitPidDetected(pid uint16)

	// OnEttPidDetected MGT中出现了新的ETT PID（包含channel ETT），每个PID只回调一次
	OnEttPidDetected(pid uint16)

	// OnVctItemParsed VCT中的频道和PMT都已经收到
	//
	// channel ETT晚于频道到达时，会携带新的Description再回调一次
	OnVctItemParsed(channel *psip.VctItem, pmtItems []psip.PmtItem)

	// OnEitItemParsed 频道的节目列表，按开始时间排序，每次收到该频道的EIT或ETT都会回调
	//
	// DVB模式下channel由SDT生成，ProgramNumber与SourceId均为service_id
	OnEitItemParsed(channel *psip.VctItem, items []psip.EitItem)

	// OnAllVctItemsParsed VCT的所有section都已收到，并且其中的所有频道都已经和PMT关联上，只回调一次
	OnAllVctItemsParsed()

	// OnSdtItemParsed DVB模式下，SDT中的service和PMT都已经收到
	OnSdtItemParsed(channel *psip.SdtItem, pmtItems []psip.PmtItem)
}

// ITsParser TsParser 和 SyncTsParser 都满足
type ITsParser interface {
	FeedTsData(b []byte, offset, length int)
	StartListening(pid uint16)
	ResetDataVersions()
	GetMalFormedChannels() []MalFormedChannel
	GetIsDvb() bool
	GetVctItems() []psip.VctItem
	GetSdtItems() []psip.SdtItem
	GetEitPids() []uint16
	GetEttPids() []uint16
	GetStat() Stat
	UniqueKey() string
}

type Option struct {
	IsDvb bool // true则监听SDT(0x11)和EIT(0x12)，false则监听ATSC的0x1FFB

	VerifyCrc bool // 是否校验section的CRC_32

	MaxSectionSize int // 单个section的最大长度，超过则认为流损坏
}

var defaultOption = Option{
	IsDvb:          false,
	VerifyCrc:      true,
	MaxSectionSize: base.MpegtsMaxSectionSize,
}

type ModOption func(option *Option)

// MalFormedChannel 出现在PAT/PMT中，但是没有找到对应VCT或SDT的节目
type MalFormedChannel struct {
	ProgramNumber uint16
	PmtItems      []psip.PmtItem // 可能为nil，比如只收到了VCT，没有收到PMT
}

// EventSourceEntry 多个PID可能携带同一个source的EIT/ETT，所以用(PID, source_id)作为key
type EventSourceEntry struct {
	Pid      uint16
	SourceId uint16
}

type Stat struct {
	Feed            mpegts.FeedStat
	Streams         int // 正在监听的PID数量
	HandledVctCount int // 已经和PMT关联上的VCT频道数量
	AllVctParsed    bool
}

type pidStream struct {
	stream *mpegts.SectionStream
	parser *psip.SectionParser
}

// vctTableKey VCT表的一个实例，任意一项变化都需要重新收集所有section
type vctTableKey struct {
	tableId uint8
	tsid    uint16
	version uint8
}

// TsParser
//
// 非并发安全，调用方需要保证 FeedTsData、ResetDataVersions 等方法串行调用，需要并发调用时使用 SyncTsParser
type TsParser struct {
	uniqueKey string
	option    Option
	observer  IOutputObserver

	streams map[uint16]*pidStream

	// ----- PAT/PMT/VCT/SDT -----
	programNumberHandled map[uint16]bool // 不存在: 未知; false: 等待对端; true: 已回调
	pmtItems             map[uint16][]psip.PmtItem
	programNumberToVct   map[uint16]*psip.VctItem
	sourceIdToVct        map[uint16]*psip.VctItem
	programNumberToSdt   map[uint16]*psip.SdtItem
	channelDescriptions  map[uint16]string // channel ETT可能早于VCT到达，source_id -> text
	handledVctCount      int

	vctTable             vctTableKey
	vctTableValid        bool
	vctSectionSeen       []bool
	allVctParsedNotified bool

	// ----- EIT/ETT -----
	eitPids         []uint16
	ettPids         []uint16
	eitItems        map[EventSourceEntry][]psip.EitItem
	ettItems        map[EventSourceEntry][]psip.EttItem
	sourceIdHandled map[uint16]bool

	feedStat mpegts.FeedStat

	debugLogDump base.LogDump
}

// NewTsParser
//
// @param observer: 可以为nil，此时不回调
func NewTsParser(observer IOutputObserver, modOptions ...ModOption) *TsParser {
	option := defaultOption
	for _, fn := range modOptions {
		fn(&option)
	}
	if option.MaxSectionSize <= 0 {
		option.MaxSectionSize = base.MpegtsMaxSectionSize
	}

	p := &TsParser{
		uniqueKey:            base.GenUkTsParser(),
		option:               option,
		observer:             observer,
		streams:              make(map[uint16]*pidStream),
		programNumberHandled: make(map[uint16]bool),
		pmtItems:             make(map[uint16][]psip.PmtItem),
		programNumberToVct:   make(map[uint16]*psip.VctItem),
		sourceIdToVct:        make(map[uint16]*psip.VctItem),
		programNumberToSdt:   make(map[uint16]*psip.SdtItem),
		channelDescriptions:  make(map[uint16]string),
		eitItems:             make(map[EventSourceEntry][]psip.EitItem),
		ettItems:             make(map[EventSourceEntry][]psip.EttItem),
		sourceIdHandled:      make(map[uint16]bool),
		debugLogDump:         base.NewLogDump(Log, base.TsParserLogDumpDebugMaxNum),
	}
	Log.Infof("[%s] lifecycle new TsParser. parser=%p, dvb=%v, verify_crc=%v", p.uniqueKey, p, option.IsDvb, option.VerifyCrc)

	p.StartListening(mpegts.PidPat)
	if option.IsDvb {
		p.StartListening(mpegts.PidSdt)
		p.StartListening(mpegts.PidEit)
		p.addEitPid(mpegts.PidEit)
	} else {
		p.StartListening(mpegts.PidAtscSiBase)
	}
	return p
}

// FeedTsData 输入TS流，b[offset:offset+length]中只处理完整的188字节packet，末尾不足188字节的部分被丢弃
//
// 所有表的回调都在该函数内同步执行
func (p *TsParser) FeedTsData(b []byte, offset, length int) {
	stat := mpegts.FeedPackets(b, offset, length, p.lookupStream)
	p.feedStat.Add(stat)
}

// StartListening 开始接收某个PID上的section，重复调用没有副作用
func (p *TsParser) StartListening(pid uint16) {
	if _, ok := p.streams[pid]; ok {
		return
	}
	parser := psip.NewSectionParser(pid, &sectionObserver{p: p}, psip.SectionParserOption{
		IsDvb:     p.option.IsDvb,
		VerifyCrc: p.option.VerifyCrc,
	})
	p.streams[pid] = &pidStream{
		stream: mpegts.NewSectionStream(pid, parser, p.option.MaxSectionSize),
		parser: parser,
	}
	Log.Debugf("[%s] start listening. pid=0x%04x", p.uniqueKey, pid)
}

// ResetDataVersions 清空各PID的section版本号缓存以及VCT的section收集状态，用于重新调谐之后强制重新解析
//
// 各PID上累积了一半的section也一并丢弃，重新调谐前后的数据不能拼在一起。
// 已经关联的数据和已经回调过的状态不变。
func (p *TsParser) ResetDataVersions() {
	for _, s := range p.streams {
		s.stream.Reset()
		s.parser.ResetVersionNumbers()
	}
	p.vctTableValid = false
	p.vctSectionSeen = nil
	suppressed := p.debugLogDump.Reset()
	Log.Infof("[%s] reset data versions. streams=%d, suppressed_debug_logs=%d", p.uniqueKey, len(p.streams), suppressed)
}

// GetMalFormedChannels 返回所有还没有关联上VCT/SDT的节目，按program_number排序
func (p *TsParser) GetMalFormedChannels() []MalFormedChannel {
	var ret []MalFormedChannel
	for programNumber, handled := range p.programNumberHandled {
		if handled {
			continue
		}
		ret = append(ret, MalFormedChannel{
			ProgramNumber: programNumber,
			PmtItems:      clonePmtItems(p.pmtItems[programNumber]),
		})
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].ProgramNumber < ret[j].ProgramNumber
	})
	return ret
}

func (p *TsParser) GetIsDvb() bool {
	return p.option.IsDvb
}

// GetVctItems 所有已经收到的VCT频道，按频道号排序
func (p *TsParser) GetVctItems() []psip.VctItem {
	uniq := make(map[*psip.VctItem]struct{})
	for _, v := range p.programNumberToVct {
		uniq[v] = struct{}{}
	}
	for _, v := range p.sourceIdToVct {
		uniq[v] = struct{}{}
	}
	ret := make([]psip.VctItem, 0, len(uniq))
	for v := range uniq {
		ret = append(ret, *v)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].MajorChannelNumber != ret[j].MajorChannelNumber {
			return ret[i].MajorChannelNumber < ret[j].MajorChannelNumber
		}
		if ret[i].MinorChannelNumber != ret[j].MinorChannelNumber {
			return ret[i].MinorChannelNumber < ret[j].MinorChannelNumber
		}
		return ret[i].SourceId < ret[j].SourceId
	})
	return ret
}

// GetSdtItems 所有已经收到的SDT service，按service_id排序
func (p *TsParser) GetSdtItems() []psip.SdtItem {
	ret := make([]psip.SdtItem, 0, len(p.programNumberToSdt))
	for _, v := range p.programNumberToSdt {
		ret = append(ret, *v)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].ServiceId < ret[j].ServiceId
	})
	return ret
}

func (p *TsParser) GetEitPids() []uint16 {
	return append([]uint16(nil), p.eitPids...)
}

func (p *TsParser) GetEttPids() []uint16 {
	return append([]uint16(nil), p.ettPids...)
}

func (p *TsParser) GetStat() Stat {
	return Stat{
		Feed:            p.feedStat,
		Streams:         len(p.streams),
		HandledVctCount: p.handledVctCount,
		AllVctParsed:    p.allVctParsedNotified,
	}
}

func (p *TsParser) UniqueKey() string {
	return p.uniqueKey
}

// ---------------------------------------------------------------------------------------------------------------------

func (p *TsParser) lookupStream(pid uint16) mpegts.IPacketStream {
	s, ok := p.streams[pid]
	if !ok {
		return nil
	}
	return s.stream
}

func clonePmtItems(items []psip.PmtItem) []psip.PmtItem {
	if items == nil {
		return nil
	}
	return append(make([]psip.PmtItem, 0, len(items)), items...)
}
