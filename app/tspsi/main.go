// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/q191201771/naza/pkg/bininfo"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tunerpsi/pkg/base"
	"github.com/q191201771/tunerpsi/pkg/mpegts"
	"github.com/q191201771/tunerpsi/pkg/tsparser"
	"golang.org/x/sync/errgroup"
)

// tspsi 从文件、UDP或者SRT读取TS流，打印PAT/PMT/VCT/SDT/EIT/ETT的关联结果
//
// 运行中收到SIGUSR1时，清空版本号缓存，重新解析所有表
// 配置文件说明见 conf/tspsi.conf.json

func main() {
	confFile := parseFlag()
	config := loadConf(confFile)
	initLog(config.Log)
	base.LogoutStartInfo()
	nazalog.Infof("load conf succ. content=%+v", config)

	code := run(config)
	nazalog.Sync()
	os.Exit(code)
}

func run(config *Config) int {
	var w io.Writer
	if config.DumpJson {
		w = os.Stdout
	}
	observer := NewObserver(w)
	parser := tsparser.NewSyncTsParser(observer, func(option *tsparser.Option) {
		option.IsDvb = config.Dvb
		option.VerifyCrc = config.VerifyCrc
	})
	nazalog.Infof("[%s] lifecycle new ts parser. dvb=%v, verify_crc=%v", parser.UniqueKey(), config.Dvb, config.VerifyCrc)

	var recorder *mpegts.FileWriter
	if config.RecordFile != "" {
		recorder = &mpegts.FileWriter{}
		if err := recorder.Create(config.RecordFile); err != nil {
			nazalog.Errorf("create record file failed. file=%s, err=%+v", config.RecordFile, err)
			return 1
		}
	}

	input := NewInput(config.Input)
	nazalog.Infof("[%s] input. type=%s", input.UniqueKey(), config.Input.Type)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// 数据源结束时，signal handler也跟着退出
		defer cancel()
		return input.RunLoop(gctx, func(b []byte) {
			if recorder != nil {
				if err := recorder.Write(b); err != nil {
					nazalog.Warnf("write record file failed. err=%+v", err)
				}
			}
			parser.FeedTsData(b, 0, len(b))
		})
	})
	g.Go(func() error {
		base.RunSignalHandler(gctx, parser.ResetDataVersions, cancel)
		return nil
	})
	runErr := g.Wait()

	if recorder != nil {
		nazalog.Infof("record file done. file=%s, written=%d", recorder.Name(), recorder.Written())
		_ = recorder.Dispose()
	}

	stat := parser.GetStat()
	nazalog.Infof("[%s] stat. %+v", parser.UniqueKey(), stat)
	malformed := parser.GetMalFormedChannels()
	observer.Report(malformed)

	if runErr != nil {
		nazalog.Errorf("[%s] input failed. err=%+v", input.UniqueKey(), runErr)
		return 1
	}

	if config.CrossCheck && config.Input.Type == InputTypeFile {
		diff, err := crossCheck(context.Background(), config.Input.File, collectPrograms(observer, malformed))
		if err != nil {
			nazalog.Errorf("cross check failed. err=%+v", err)
			return 1
		}
		if diff != 0 {
			return 2
		}
	}
	return 0
}

func parseFlag() string {
	binInfoFlag := flag.Bool("v", false, "show bin info")
	cf := flag.String("c", "", "specify conf file")
	flag.Parse()
	if *binInfoFlag {
		_, _ = fmt.Fprint(os.Stderr, bininfo.StringifyMultiLine())
		_, _ = fmt.Fprintln(os.Stderr, base.TunerPsiFullInfo)
		os.Exit(0)
	}
	return *cf
}

// loadConf 命令行没有指定配置文件时，尝试默认路径
func loadConf(confFile string) *Config {
	rawContent := base.WrapReadConfigFile(confFile, defaultConfigFiles, func() {
		_, _ = fmt.Fprintf(os.Stderr, `
Example:
  ./bin/tspsi -c ./conf/tspsi.conf.json
`)
	})
	config, err := ParseConf(rawContent)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load conf failed. file=%s err=%+v\n", confFile, err)
		base.OsExitAndWaitPressIfWindows(1)
	}
	return config
}

func initLog(opt nazalog.Option) {
	if err := nazalog.Init(func(option *nazalog.Option) {
		*option = opt
	}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "initial log failed. err=%+v\n", err)
		os.Exit(1)
	}
	nazalog.Info("initial log succ.")
}

var defaultConfigFiles = []string{
	"./conf/tspsi.conf.json",
	"../conf/tspsi.conf.json",
	"../../conf/tspsi.conf.json",
}
