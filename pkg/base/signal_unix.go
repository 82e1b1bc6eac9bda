// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly
// +build linux darwin netbsd freebsd openbsd dragonfly

package base

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// RunSignalHandler 阻塞直到ctx结束或者收到退出信号
//
// SIGUSR1回调onUsr1后继续监听，SIGINT/SIGTERM回调onExit后返回
//
// @param onUsr1: 可以为nil
func RunSignalHandler(ctx context.Context, onUsr1 func(), onExit func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGUSR1, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-c:
			Log.Infof("recv signal. s=%+v", s)
			if s == syscall.SIGUSR1 {
				if onUsr1 != nil {
					onUsr1()
				}
				continue
			}
			onExit()
			return
		}
	}
}
