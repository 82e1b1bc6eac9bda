// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psip

import (
	"github.com/q191201771/naza/pkg/nazaerrors"
	"github.com/q191201771/tunerpsi/pkg/mpegts"
)

// VctSectionInfo 一个VCT section在所属表中的位置，用于判断多section的VCT是否已经收齐
type VctSectionInfo struct {
	TableId           uint8
	Tsid              uint16
	VersionNumber     uint8
	SectionNumber     uint8
	LastSectionNumber uint8
}

// ISectionParserObserver
//
// 回调中的切片由SectionParser新分配，observer可以直接持有
type ISectionParserObserver interface {
	OnPatParsed(items []PatItem)
	OnPmtParsed(programNumber uint16, items []PmtItem)
	OnMgtParsed(items []MgtItem)
	OnVctParsed(items []VctItem, info VctSectionInfo)

	// OnEitParsed DVB模式下sourceId为service_id
	OnEitParsed(pid uint16, sourceId uint16, items []EitItem)
	OnEttParsed(pid uint16, items []EttItem)
	OnSdtParsed(tsid uint16, items []SdtItem)
}

type SectionParserOption struct {
	IsDvb     bool
	VerifyCrc bool
}

type SectionParserStat struct {
	Sections  uint64 // 收到的section数量，包含被丢弃的
	Parsed    uint64
	Duplicate uint64
	CrcError  uint64
	Error     uint64
}

type versionKey struct {
	tableId          uint8
	tableIdExtension uint16
	sectionNumber    uint8
	etmId            uint32 // 只有ETT使用
}

// SectionParser 一个PID对应一个SectionParser，实现了mpegts.ISectionSink
//
// 相同(table_id, table_id_extension, section_number)且版本号没有变化的section被认为是重复的，直接丢弃
type SectionParser struct {
	pid      uint16
	observer ISectionParserObserver
	option   SectionParserOption

	versions map[versionKey]uint8
	stat     SectionParserStat
}

func NewSectionParser(pid uint16, observer ISectionParserObserver, option SectionParserOption) *SectionParser {
	return &SectionParser{
		pid:      pid,
		observer: observer,
		option:   option,
		versions: make(map[versionKey]uint8),
	}
}

func (sp *SectionParser) OnSection(pid uint16, section []byte) {
	sp.stat.Sections++
	if len(section) < mpegts.SectionShortHeaderSize {
		return
	}
	tableId := section[0]
	if !sp.isAcceptedTable(tableId) {
		return
	}

	if sp.option.VerifyCrc && !mpegts.VerifyCrc32(section) {
		sp.stat.CrcError++
		Log.Warnf("[psip] crc32 mismatch, drop section. pid=0x%04x, table_id=0x%02x, len=%d", pid, tableId, len(section))
		return
	}

	h, err := ParseSectionHeader(section)
	if err != nil {
		sp.stat.Error++
		Log.Warnf("[psip] parse section header failed. pid=0x%04x, table_id=0x%02x, err=%+v", pid, tableId, nazaerrors.Wrap(err))
		return
	}
	if h.CurrentNextIndicator == 0 {
		return
	}

	key := versionKey{
		tableId:          h.TableId,
		tableIdExtension: h.TableIdExtension,
		sectionNumber:    h.SectionNumber,
	}
	if h.TableId == mpegts.TsPsiIdEtt {
		key.etmId, _ = PeekEttEtmId(section)
	}
	if v, ok := sp.versions[key]; ok && v == h.VersionNumber {
		sp.stat.Duplicate++
		return
	}

	if err = sp.dispatch(pid, h, section); err != nil {
		sp.stat.Error++
		Log.Warnf("[psip] parse section failed. pid=0x%04x, table_id=0x%02x, err=%+v", pid, tableId, nazaerrors.Wrap(err))
		return
	}
	sp.versions[key] = h.VersionNumber
	sp.stat.Parsed++
}

// ResetVersionNumbers 清空版本号缓存，之后收到的section都会被重新解析
func (sp *SectionParser) ResetVersionNumbers() {
	sp.versions = make(map[versionKey]uint8)
}

func (sp *SectionParser) Pid() uint16 {
	return sp.pid
}

func (sp *SectionParser) GetStat() SectionParserStat {
	return sp.stat
}

func (sp *SectionParser) isAcceptedTable(tableId uint8) bool {
	switch tableId {
	case mpegts.TsPsiIdPas, mpegts.TsPsiIdPms:
		return true
	}
	if sp.option.IsDvb {
		// 只处理当前TS的SDT和EIT
		return tableId == mpegts.TsPsiIdSdtActual ||
			tableId == mpegts.TsPsiIdEitPfActual ||
			(tableId >= mpegts.TsPsiIdEitScheduleStart && tableId <= mpegts.TsPsiIdEitScheduleEnd)
	}
	switch tableId {
	case mpegts.TsPsiIdMgt, mpegts.TsPsiIdTvct, mpegts.TsPsiIdCvct, mpegts.TsPsiIdEit, mpegts.TsPsiIdEtt:
		return true
	}
	return false
}

func (sp *SectionParser) dispatch(pid uint16, h SectionHeader, section []byte) error {
	switch {
	case h.TableId == mpegts.TsPsiIdPas:
		items, err := ParsePat(section)
		if err != nil {
			return err
		}
		sp.observer.OnPatParsed(items)
	case h.TableId == mpegts.TsPsiIdPms:
		programNumber, items, err := ParsePmt(section)
		if err != nil {
			return err
		}
		sp.observer.OnPmtParsed(programNumber, items)
	case h.TableId == mpegts.TsPsiIdMgt:
		items, err := ParseMgt(section)
		if err != nil {
			return err
		}
		sp.observer.OnMgtParsed(items)
	case h.TableId == mpegts.TsPsiIdTvct || h.TableId == mpegts.TsPsiIdCvct:
		tsid, items, err := ParseVct(section)
		if err != nil {
			return err
		}
		sp.observer.OnVctParsed(items, VctSectionInfo{
			TableId:           h.TableId,
			Tsid:              tsid,
			VersionNumber:     h.VersionNumber,
			SectionNumber:     h.SectionNumber,
			LastSectionNumber: h.LastSectionNumber,
		})
	case h.TableId == mpegts.TsPsiIdEit:
		sourceId, items, err := ParseAtscEit(section)
		if err != nil {
			return err
		}
		sp.observer.OnEitParsed(pid, sourceId, items)
	case h.TableId == mpegts.TsPsiIdEtt:
		item, _, err := ParseEtt(section)
		if err != nil {
			return err
		}
		sp.observer.OnEttParsed(pid, []EttItem{item})
	case h.TableId == mpegts.TsPsiIdSdtActual:
		tsid, items, err := ParseSdt(section)
		if err != nil {
			return err
		}
		sp.observer.OnSdtParsed(tsid, items)
	default:
		serviceId, items, err := ParseDvbEit(section)
		if err != nil {
			return err
		}
		sp.observer.OnEitParsed(pid, serviceId, items)
	}
	return nil
}
