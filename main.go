// @title 面试练习后端 API
// @version 1.0
// @description AI 模拟面试会话与候选人目录服务。

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"fmt"
	"log"

	"interview_backend/internal/app"
	"interview_backend/internal/config"
	"interview_backend/internal/service"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件所在目录")
	hashPassword := flag.String("hash-password", "", "输出面试官密码的 bcrypt 哈希后退出")
	flag.Parse()

	// 生成 auth.interviewer_password_hash 的取值
	if *hashPassword != "" {
		hashed, err := service.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hashed)
		return
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	application.Run()
}
