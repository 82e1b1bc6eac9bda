// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package tsparser

import "github.com/q191201771/tunerpsi/pkg/psip"

// VCT中program_number为0表示频道未激活，0xFFFF表示模拟频道，都不会有PMT
const (
	programNumberInactive = 0x0000
	programNumberAnalog   = 0xFFFF
)

func (p *TsParser) onVctParsed(items []psip.VctItem, info psip.VctSectionInfo) {
	if !p.markVctSection(info) {
		Log.Debugf("[%s] duplicate vct section. table_id=0x%02x, version=%d, section=%d/%d",
			p.uniqueKey, info.TableId, info.VersionNumber, info.SectionNumber, info.LastSectionNumber)
		return
	}
	Log.Debugf("[%s] vct section parsed. table_id=0x%02x, tsid=%d, version=%d, section=%d/%d, channels=%d",
		p.uniqueKey, info.TableId, info.Tsid, info.VersionNumber, info.SectionNumber, info.LastSectionNumber, len(items))

	for i := range items {
		item := items[i]
		if item.SourceId != 0 {
			if desc, ok := p.channelDescriptions[item.SourceId]; ok {
				item.Description = desc
			}
			p.sourceIdToVct[item.SourceId] = &item
		}

		programNumber := item.ProgramNumber
		if programNumber == programNumberInactive || programNumber == programNumberAnalog {
			continue
		}
		p.programNumberToVct[programNumber] = &item
		if p.programNumberHandled[programNumber] {
			continue
		}

		if pmtItems, ok := p.pmtItems[programNumber]; ok {
			p.resolveVct(&item, pmtItems)
			p.resolvePendingEvents(item.SourceId)
		} else {
			p.programNumberHandled[programNumber] = false
		}
	}

	p.checkAllVctParsed()
}

func (p *TsParser) onSdtParsed(tsid uint16, items []psip.SdtItem) {
	Log.Debugf("[%s] sdt parsed. tsid=%d, services=%d", p.uniqueKey, tsid, len(items))

	for i := range items {
		item := items[i]
		serviceId := item.ServiceId
		p.programNumberToSdt[serviceId] = &item
		if p.programNumberHandled[serviceId] {
			continue
		}

		if pmtItems, ok := p.pmtItems[serviceId]; ok {
			p.resolveSdt(&item, pmtItems)
			p.resolvePendingEvents(serviceId)
		} else {
			p.programNumberHandled[serviceId] = false
		}
	}
}

func (p *TsParser) resolveVct(vct *psip.VctItem, pmtItems []psip.PmtItem) {
	p.programNumberHandled[vct.ProgramNumber] = true
	p.handledVctCount++
	p.notifyVct(vct, pmtItems)
}

func (p *TsParser) resolveSdt(sdt *psip.SdtItem, pmtItems []psip.PmtItem) {
	p.programNumberHandled[sdt.ServiceId] = true
	Log.Debugf("[%s] sdt item resolved. service=%d, name=%s", p.uniqueKey, sdt.ServiceId, sdt.ServiceName)
	if p.observer != nil {
		channel := *sdt
		p.observer.OnSdtItemParsed(&channel, clonePmtItems(pmtItems))
	}
}

func (p *TsParser) notifyVct(vct *psip.VctItem, pmtItems []psip.PmtItem) {
	Log.Debugf("[%s] vct item resolved. channel=%s, name=%s, program=%d, source=%d",
		p.uniqueKey, vct.DisplayNumber(), vct.ShortName, vct.ProgramNumber, vct.SourceId)
	if p.observer != nil {
		channel := *vct
		p.observer.OnVctItemParsed(&channel, clonePmtItems(pmtItems))
	}
}

// markVctSection 记录VCT表实例中已经收到的section
//
// @return: false表示该section已经收到过
func (p *TsParser) markVctSection(info psip.VctSectionInfo) bool {
	key := vctTableKey{
		tableId: info.TableId,
		tsid:    info.Tsid,
		version: info.VersionNumber,
	}
	if !p.vctTableValid || p.vctTable != key {
		p.vctTable = key
		p.vctTableValid = true
		p.vctSectionSeen = make([]bool, int(info.LastSectionNumber)+1)
	}

	need := int(info.LastSectionNumber) + 1
	if int(info.SectionNumber) >= need {
		need = int(info.SectionNumber) + 1
	}
	if need > len(p.vctSectionSeen) {
		p.vctSectionSeen = append(p.vctSectionSeen, make([]bool, need-len(p.vctSectionSeen))...)
	}

	if p.vctSectionSeen[info.SectionNumber] {
		return false
	}
	p.vctSectionSeen[info.SectionNumber] = true
	return true
}

func (p *TsParser) checkAllVctParsed() {
	if p.allVctParsedNotified || !p.vctTableValid {
		return
	}
	for _, seen := range p.vctSectionSeen {
		if !seen {
			return
		}
	}
	for programNumber := range p.programNumberToVct {
		if !p.programNumberHandled[programNumber] {
			return
		}
	}

	p.allVctParsedNotified = true
	Log.Infof("[%s] all vct items parsed. sections=%d, channels=%d, handled=%d",
		p.uniqueKey, len(p.vctSectionSeen), len(p.programNumberToVct), p.handledVctCount)
	if p.observer != nil {
		p.observer.OnAllVctItemsParsed()
	}
}
