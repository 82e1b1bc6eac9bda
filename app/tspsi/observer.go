// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/asticode/go-astits"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tunerpsi/pkg/psip"
	"github.com/q191201771/tunerpsi/pkg/tsparser"
)

// Observer 打印 TsParser 的所有回调，同时记录关联上的节目，用于结束时的汇总以及和astits的对比
type Observer struct {
	enc *json.Encoder // nil表示不输出json

	programs map[uint16][]psip.PmtItem
	channels int
	events   int
}

type jsonLine struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type jsonPmtItem struct {
	StreamType     uint8  `json:"stream_type"`
	StreamTypeName string `json:"stream_type_name"`
	EsPid          uint16 `json:"es_pid"`
	LanguageCode   string `json:"language_code,omitempty"`
}

type jsonChannel struct {
	Channel  interface{}   `json:"channel"`
	PmtItems []jsonPmtItem `json:"pmt_items"`
}

type jsonEvents struct {
	SourceId uint16         `json:"source_id"`
	Events   []psip.EitItem `json:"events"`
}

// @param w: 为nil时不输出json
func NewObserver(w io.Writer) *Observer {
	o := &Observer{
		programs: make(map[uint16][]psip.PmtItem),
	}
	if w != nil {
		o.enc = json.NewEncoder(w)
	}
	return o
}

func (o *Observer) OnPatParsed(items []psip.PatItem) {
	nazalog.Infof("PAT. programs=%d", len(items))
	for _, item := range items {
		nazalog.Debugf("    program_number=%d, pmt_pid=0x%04x", item.ProgramNumber, item.PmtPid)
	}
	o.emit("pat", items)
}

func (o *Observer) OnEitPidDetected(pid uint16) {
	nazalog.Infof("EIT pid detected. pid=0x%04x", pid)
	o.emit("eit_pid", pid)
}

func (o *Observer) OnEttPidDetected(pid uint16) {
	nazalog.Infof("ETT pid detected. pid=0x%04x", pid)
	o.emit("ett_pid", pid)
}

func (o *Observer) OnVctItemParsed(channel *psip.VctItem, pmtItems []psip.PmtItem) {
	o.channels++
	o.programs[channel.ProgramNumber] = pmtItems
	nazalog.Infof("channel. %s %s, program_number=%d, source_id=0x%04x, streams=%s, desc=%s",
		channel.DisplayNumber(), channel.ShortName, channel.ProgramNumber, channel.SourceId,
		stringifyPmtItems(pmtItems), channel.Description)
	o.emit("vct", jsonChannel{Channel: channel, PmtItems: toJsonPmtItems(pmtItems)})
}

func (o *Observer) OnEitItemParsed(channel *psip.VctItem, items []psip.EitItem) {
	o.events += len(items)
	nazalog.Infof("events. %s %s, count=%d", channel.DisplayNumber(), channel.ShortName, len(items))
	for _, item := range items {
		nazalog.Debugf("    [%d] %s +%ds %s (%s)", item.EventId,
			time.Unix(item.StartTime, 0).UTC().Format(time.RFC3339), item.LengthInSeconds, item.TitleText, item.Description)
	}
	o.emit("eit", jsonEvents{SourceId: channel.SourceId, Events: items})
}

func (o *Observer) OnAllVctItemsParsed() {
	nazalog.Infof("all vct items parsed. channels=%d", o.channels)
	o.emit("vct_done", o.channels)
}

func (o *Observer) OnSdtItemParsed(channel *psip.SdtItem, pmtItems []psip.PmtItem) {
	o.channels++
	o.programs[channel.ServiceId] = pmtItems
	nazalog.Infof("service. %s (%s), service_id=%d, type=0x%02x, streams=%s",
		channel.ServiceName, channel.ServiceProviderName, channel.ServiceId, channel.ServiceType,
		stringifyPmtItems(pmtItems))
	o.emit("sdt", jsonChannel{Channel: channel, PmtItems: toJsonPmtItems(pmtItems)})
}

// Programs 已经回调过的节目，program_number -> PMT
func (o *Observer) Programs() map[uint16][]psip.PmtItem {
	return o.programs
}

func (o *Observer) Report(malformed []tsparser.MalFormedChannel) {
	nazalog.Infof("report. channels=%d, events=%d, malformed=%d", o.channels, o.events, len(malformed))
	for _, c := range malformed {
		nazalog.Infof("    malformed program. program_number=%d, streams=%s", c.ProgramNumber, stringifyPmtItems(c.PmtItems))
	}
	o.emit("malformed", malformed)
}

func (o *Observer) emit(event string, data interface{}) {
	if o.enc == nil {
		return
	}
	if err := o.enc.Encode(jsonLine{Event: event, Data: data}); err != nil {
		nazalog.Warnf("encode json failed. event=%s, err=%+v", event, err)
	}
}

func toJsonPmtItems(items []psip.PmtItem) []jsonPmtItem {
	ret := make([]jsonPmtItem, 0, len(items))
	for _, item := range items {
		ret = append(ret, jsonPmtItem{
			StreamType:     item.StreamType,
			StreamTypeName: streamTypeName(item.StreamType),
			EsPid:          item.EsPid,
			LanguageCode:   item.LanguageCode,
		})
	}
	return ret
}

func stringifyPmtItems(items []psip.PmtItem) string {
	if items == nil {
		return "[]"
	}
	var parts []string
	for _, item := range items {
		s := fmt.Sprintf("%s@0x%04x", streamTypeName(item.StreamType), item.EsPid)
		if item.LanguageCode != "" {
			s += "(" + item.LanguageCode + ")"
		}
		parts = append(parts, s)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func streamTypeName(t uint8) string {
	switch astits.StreamType(t) {
	case astits.StreamTypeH264Video:
		return "H264"
	case astits.StreamTypeH265Video:
		return "H265"
	case astits.StreamTypeAACAudio:
		return "AAC"
	}
	switch t {
	case 0x02:
		return "MPEG2"
	case 0x81:
		return "AC3"
	case 0x87:
		return "EAC3"
	}
	return fmt.Sprintf("0x%02x", t)
}
