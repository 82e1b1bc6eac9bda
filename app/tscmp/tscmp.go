// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tunerpsi/pkg/psip"
	"github.com/q191201771/tunerpsi/pkg/tsparser"
)

// 比较两个TS文件解析出的频道表，比如同一个频点不同时间的录制，或者转码前后的文件
//
// 只比较关联后的结果（频道、service、没有关联上的节目、EIT PID），不比较原始packet

type lineup struct {
	vcts      map[uint16]psip.VctItem // key: source_id
	sdts      map[uint16]psip.SdtItem // key: service_id
	malformed map[uint16][]psip.PmtItem
	eitPids   []uint16
}

func parseFile(filename string, isDvb bool) lineup {
	content, err := os.ReadFile(filename)
	nazalog.Assert(nil, err)

	p := tsparser.NewTsParser(nil, func(option *tsparser.Option) {
		option.IsDvb = isDvb
	})
	p.FeedTsData(content, 0, len(content))
	nazalog.Debugf("[%s] %s. stat=%+v", p.UniqueKey(), filename, p.GetStat())

	l := lineup{
		vcts:      make(map[uint16]psip.VctItem),
		sdts:      make(map[uint16]psip.SdtItem),
		malformed: make(map[uint16][]psip.PmtItem),
		eitPids:   p.GetEitPids(),
	}
	for _, item := range p.GetVctItems() {
		l.vcts[item.SourceId] = item
	}
	for _, item := range p.GetSdtItems() {
		l.sdts[item.ServiceId] = item
	}
	for _, c := range p.GetMalFormedChannels() {
		l.malformed[c.ProgramNumber] = c.PmtItems
	}
	return l
}

func compareVct(a, b map[uint16]psip.VctItem) (diff int) {
	for k, va := range a {
		vb, ok := b[k]
		if !ok {
			nazalog.Infof("vct only in a. source_id=0x%04x, %s %s", k, va.DisplayNumber(), va.ShortName)
			diff++
			continue
		}
		if va != vb {
			nazalog.Infof("vct diff. source_id=0x%04x\n    a=%+v\n    b=%+v", k, va, vb)
			diff++
		}
	}
	for k, vb := range b {
		if _, ok := a[k]; !ok {
			nazalog.Infof("vct only in b. source_id=0x%04x, %s %s", k, vb.DisplayNumber(), vb.ShortName)
			diff++
		}
	}
	return
}

func compareSdt(a, b map[uint16]psip.SdtItem) (diff int) {
	for k, va := range a {
		vb, ok := b[k]
		if !ok || va != vb {
			nazalog.Infof("sdt diff. service_id=%d\n    a=%+v\n    b=%+v", k, va, vb)
			diff++
		}
	}
	for k, vb := range b {
		if _, ok := a[k]; !ok {
			nazalog.Infof("sdt only in b. service_id=%d, %s", k, vb.ServiceName)
			diff++
		}
	}
	return
}

func main() {
	_ = nazalog.Init(func(option *nazalog.Option) {
		option.AssertBehavior = nazalog.AssertFatal
	})
	defer nazalog.Sync()

	filenameA := flag.String("a", "", "specify first ts file")
	filenameB := flag.String("b", "", "specify second ts file")
	isDvb := flag.Bool("dvb", false, "dvb mode, default atsc")
	flag.Parse()
	if *filenameA == "" || *filenameB == "" {
		flag.Usage()
		_, _ = fmt.Fprintf(os.Stderr, `
Example:
  ./bin/tscmp -a ./testdata/a.ts -b ./testdata/b.ts
  ./bin/tscmp -a ./testdata/a.ts -b ./testdata/b.ts -dvb
`)
		os.Exit(1)
	}

	a := parseFile(*filenameA, *isDvb)
	b := parseFile(*filenameB, *isDvb)
	nazalog.Debugf("a: vct=%d, sdt=%d, malformed=%d, eit pids=%v", len(a.vcts), len(a.sdts), len(a.malformed), a.eitPids)
	nazalog.Debugf("b: vct=%d, sdt=%d, malformed=%d, eit pids=%v", len(b.vcts), len(b.sdts), len(b.malformed), b.eitPids)

	diff := compareVct(a.vcts, b.vcts)
	diff += compareSdt(a.sdts, b.sdts)
	if !reflect.DeepEqual(a.malformed, b.malformed) {
		nazalog.Infof("malformed diff.\n    a=%+v\n    b=%+v", a.malformed, b.malformed)
		diff++
	}
	if !reflect.DeepEqual(a.eitPids, b.eitPids) {
		nazalog.Infof("eit pids diff. a=%v, b=%v", a.eitPids, b.eitPids)
		diff++
	}

	nazalog.Infof("done. diff=%d", diff)
	if diff != 0 {
		nazalog.Sync()
		os.Exit(2)
	}
}
