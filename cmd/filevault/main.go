// Package main 启动应用程序
package main

import (
	"os"

	"github.com/yeisme/filevault/pkg/cmd"
)

//	@title			FileVault API
//	@version		0.1.0
//	@description	FileVault 存储文件夹、文件与图片，支持公开访问与异步缩略图生成。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com.

//	@securityDefinitions.apikey	TokenAuth
//	@in							header
//	@name						X-Token

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
