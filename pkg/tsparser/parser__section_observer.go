// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package tsparser

import "github.com/q191201771/tunerpsi/pkg/psip"

// sectionObserver 接收各PID的 psip.SectionParser 的回调，转给 TsParser
//
// 单独一个类型，避免 psip.ISectionParserObserver 的方法暴露在 TsParser 上
type sectionObserver struct {
	p *TsParser
}

func (o *sectionObserver) OnPatParsed(items []psip.PatItem) {
	o.p.onPatParsed(items)
}

func (o *sectionObserver) OnPmtParsed(programNumber uint16, items []psip.PmtItem) {
	o.p.onPmtParsed(programNumber, items)
}

func (o *sectionObserver) OnMgtParsed(items []psip.MgtItem) {
	o.p.onMgtParsed(items)
}

func (o *sectionObserver) OnVctParsed(items []psip.VctItem, info psip.VctSectionInfo) {
	o.p.onVctParsed(items, info)
}

func (o *sectionObserver) OnEitParsed(pid uint16, sourceId uint16, items []psip.EitItem) {
	o.p.onEitParsed(pid, sourceId, items)
}

func (o *sectionObserver) OnEttParsed(pid uint16, items []psip.EttItem) {
	o.p.onEttParsed(pid, items)
}

func (o *sectionObserver) OnSdtParsed(tsid uint16, items []psip.SdtItem) {
	o.p.onSdtParsed(tsid, items)
}
