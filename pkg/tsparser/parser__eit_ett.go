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

	"github.com/q191201771/tunerpsi/pkg/psip"
)

func (p *TsParser) onMgtParsed(items []psip.MgtItem) {
	for _, item := range items {
		switch {
		case item.IsEitTableType():
			if p.addEitPid(item.TablePid) {
				p.StartListening(item.TablePid)
				Log.Infof("[%s] eit pid detected. pid=0x%04x, table_type=0x%04x", p.uniqueKey, item.TablePid, item.TableType)
				if p.observer != nil {
					p.observer.OnEitPidDetected(item.TablePid)
				}
			}
		case item.IsEttTableType():
			if p.addEttPid(item.TablePid) {
				p.StartListening(item.TablePid)
				Log.Infof("[%s] ett pid detected. pid=0x%04x, table_type=0x%04x", p.uniqueKey, item.TablePid, item.TableType)
				if p.observer != nil {
					p.observer.OnEttPidDetected(item.TablePid)
				}
			}
		}
	}
}

func (p *TsParser) onEitParsed(pid uint16, sourceId uint16, items []psip.EitItem) {
	p.addEitPid(pid)
	key := EventSourceEntry{Pid: pid, SourceId: sourceId}
	p.eitItems[key] = mergeEitItems(p.eitItems[key], items)
	p.resolveEvents(sourceId)
}

// onEttParsed event_id为0的是频道描述，其余的是节目描述
func (p *TsParser) onEttParsed(pid uint16, items []psip.EttItem) {
	p.addEttPid(pid)

	var affected []uint16
	for _, item := range items {
		if item.EventId == 0 {
			p.updateChannelDescription(item.SourceId, item.Text)
			continue
		}
		key := EventSourceEntry{Pid: pid, SourceId: item.SourceId}
		p.ettItems[key] = mergeEttItem(p.ettItems[key], item)
		if !containsUint16(affected, item.SourceId) {
			affected = append(affected, item.SourceId)
		}
	}
	for _, sourceId := range affected {
		p.resolveEvents(sourceId)
	}
}

// updateChannelDescription 多个ETT PID对同一个频道给出不同描述时，以最后收到的为准
func (p *TsParser) updateChannelDescription(sourceId uint16, text string) {
	p.channelDescriptions[sourceId] = text

	vct, ok := p.sourceIdToVct[sourceId]
	if !ok || vct.Description == text {
		return
	}
	vct.Description = text
	if p.programNumberHandled[vct.ProgramNumber] {
		p.notifyVct(vct, p.pmtItems[vct.ProgramNumber])
	}
}

func (p *TsParser) resolvePendingEvents(sourceId uint16) {
	if handled, ok := p.sourceIdHandled[sourceId]; ok && !handled {
		p.resolveEvents(sourceId)
	}
}

// resolveEvents 合并所有EIT PID上该source的节目，再叠加所有ETT PID上的节目描述
//
// 频道还没有和PMT关联上时，只记录待关联状态，等频道关联上时再调用
func (p *TsParser) resolveEvents(sourceId uint16) {
	merged := make(map[uint16]psip.EitItem)
	for _, pid := range p.eitPids {
		for _, item := range p.eitItems[EventSourceEntry{Pid: pid, SourceId: sourceId}] {
			if !p.option.IsDvb {
				// ATSC的描述只来自ETT，DVB的描述来自EIT自身的extended_event_descriptor
				item.Description = ""
			}
			merged[item.EventId] = item
		}
	}
	if len(merged) == 0 {
		return
	}
	for _, pid := range p.ettPids {
		for _, ett := range p.ettItems[EventSourceEntry{Pid: pid, SourceId: sourceId}] {
			if item, ok := merged[ett.EventId]; ok {
				item.Description = ett.Text
				merged[ett.EventId] = item
			}
		}
	}

	channel := p.eventChannel(sourceId)
	if channel == nil {
		p.sourceIdHandled[sourceId] = false
		if p.debugLogDump.ShouldDump() {
			p.debugLogDump.Outf("[%s] eit parsed, channel not found yet. source=%d, events=%d", p.uniqueKey, sourceId, len(merged))
		}
		return
	}

	items := make([]psip.EitItem, 0, len(merged))
	for _, item := range merged {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].StartTime != items[j].StartTime {
			return items[i].StartTime < items[j].StartTime
		}
		return items[i].EventId < items[j].EventId
	})

	p.sourceIdHandled[sourceId] = true
	if p.observer != nil {
		p.observer.OnEitItemParsed(channel, items)
	}
}

// eventChannel 返回已经和PMT关联上的频道的拷贝，没有则返回nil
func (p *TsParser) eventChannel(sourceId uint16) *psip.VctItem {
	if p.option.IsDvb {
		sdt, ok := p.programNumberToSdt[sourceId]
		if !ok || !p.programNumberHandled[sourceId] {
			return nil
		}
		return &psip.VctItem{
			ShortName:     sdt.ServiceName,
			ProgramNumber: sdt.ServiceId,
			ServiceType:   sdt.ServiceType,
			SourceId:      sdt.ServiceId,
		}
	}

	vct, ok := p.sourceIdToVct[sourceId]
	if !ok || !p.programNumberHandled[vct.ProgramNumber] {
		return nil
	}
	channel := *vct
	return &channel
}

// addEitPid @return: 是否是新的PID
func (p *TsParser) addEitPid(pid uint16) bool {
	if containsUint16(p.eitPids, pid) {
		return false
	}
	p.eitPids = append(p.eitPids, pid)
	return true
}

func (p *TsParser) addEttPid(pid uint16) bool {
	if containsUint16(p.ettPids, pid) {
		return false
	}
	p.ettPids = append(p.ettPids, pid)
	return true
}

// mergeEitItems event_id相同的替换，不同的追加
func mergeEitItems(old []psip.EitItem, items []psip.EitItem) []psip.EitItem {
	for _, item := range items {
		replaced := false
		for i := range old {
			if old[i].EventId == item.EventId {
				old[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			old = append(old, item)
		}
	}
	return old
}

func mergeEttItem(old []psip.EttItem, item psip.EttItem) []psip.EttItem {
	for i := range old {
		if old[i].EventId == item.EventId {
			old[i] = item
			return old
		}
	}
	return append(old, item)
}

func containsUint16(s []uint16, v uint16) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
