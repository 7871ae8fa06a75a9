package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/versus2video/internal/export"
	"github.com/ivlev/versus2video/internal/project"
	"github.com/ivlev/versus2video/internal/system"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"projects", "assets/images", "assets/audio", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	projectPtr := flag.String("project", "", "Путь к YAML-файлу проекта (по умолчанию: самый свежий файл в projects/)")
	assetsPtr := flag.String("assets", "assets", "Каталог ресурсов (изображения и аудио)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	resolutionPtr := flag.String("resolution", "720p", "Разрешение: 480p, 720p, 1080p")
	fpsPtr := flag.Int("fps", 30, "FPS: 30 или 60")
	formatPtr := flag.String("format", "fast", "Формат экспорта: fast (аппаратный энкодер) или compatible (перекодирование libx264)")
	encoderPtr := flag.String("encoder", "", "Энкодер ffmpeg (если пусто, выбирается автоматически)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")

	flag.Parse()

	projectPath := *projectPtr
	if projectPath == "" {
		latest, err := system.FindLatestProject("projects")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите файл проекта в projects/", err)
		}
		projectPath = latest
		fmt.Printf("[*] Выбран проект: %s\n", projectPath)
	}

	p, err := project.Load(projectPath)
	if err != nil {
		log.Fatalf("[-] Ошибка чтения проекта: %v", err)
	}

	if len(p.Template.Sections) == 0 {
		log.Fatalf("[-] Ошибка: шаблон проекта не содержит ни одной секции")
	}

	fmt.Printf("[*] %s: %s против %s | Секций: %d | Правил: %d\n",
		p.Name, p.PhoneA.Name, p.PhoneB.Name, len(p.Template.Sections), len(p.Rules))

	encoderName := *encoderPtr
	if encoderName == "" {
		encoderName, _ = system.GetBestH264Encoder()
		if encoderName != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
		}
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		baseName := filepath.Base(projectPath)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	// Ctrl+C — мягкая отмена: экспорт остановится на границе кадра.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	job := export.NewJob(p, project.NewDirResolver(*assetsPtr), export.Options{
		Resolution: *resolutionPtr,
		FPS:        *fpsPtr,
		Format:     export.Format(*formatPtr),
		Encoder:    encoderName,
		Quality:    *qualityPtr,
		ShowStats:  *statsPtr,
	})
	job.OnProgress = func(pr export.Progress) {
		fmt.Printf("[>] %3d%% %s\n", pr.Percent, pr.StatusText)
	}

	data, err := job.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("[!] Экспорт отменен, файл не создан")
			return
		}
		log.Fatalf("[-] Ошибка экспорта: %v", err)
	}

	if err := os.WriteFile(finalOutput, data, 0644); err != nil {
		log.Fatalf("[-] Не удалось сохранить результат: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", finalOutput)
}
