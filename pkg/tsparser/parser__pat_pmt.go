// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package tsparser

import "github.com/q191201771/tunerpsi/pkg/psip"

func (p *TsParser) onPatParsed(items []psip.PatItem) {
	for _, item := range items {
		p.StartListening(item.PmtPid)
	}
	Log.Debugf("[%s] pat parsed. programs=%d", p.uniqueKey, len(items))

	if p.observer != nil {
		p.observer.OnPatParsed(append([]psip.PatItem(nil), items...))
	}
}

// onPmtParsed 对端可能是VCT（ATSC）或者SDT（DVB），先到的一方记录为待关联状态，后到的一方负责回调
func (p *TsParser) onPmtParsed(programNumber uint16, items []psip.PmtItem) {
	p.pmtItems[programNumber] = items
	if p.programNumberHandled[programNumber] {
		return
	}

	if vct, ok := p.programNumberToVct[programNumber]; ok {
		p.resolveVct(vct, items)
		p.checkAllVctParsed()
		p.resolvePendingEvents(vct.SourceId)
		return
	}

	if sdt, ok := p.programNumberToSdt[programNumber]; ok {
		p.resolveSdt(sdt, items)
		p.resolvePendingEvents(sdt.ServiceId)
		return
	}

	p.programNumberHandled[programNumber] = false
	if p.debugLogDump.ShouldDump() {
		p.debugLogDump.Outf("[%s] pmt parsed, channel not found yet. program=%d", p.uniqueKey, programNumber)
	}
}
