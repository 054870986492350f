package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"cuentadinos/internal/backend"
	"cuentadinos/internal/cli/scheme/colours"
	"cuentadinos/internal/client"
	"cuentadinos/internal/config"
	"cuentadinos/internal/gateway"
	"cuentadinos/internal/playback"
	"cuentadinos/internal/server"
	"cuentadinos/internal/story/tale"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var player *playback.Player

func main() {

	config.SetDefaults()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		if player != nil {
			player.Stop()
		}
		fmt.Println("\n" + colours.Warning.Sprint("👋 ¡Hasta pronto! Dulces sueños 🌙"))
		os.Exit(0)
	}()

	rootCmd := &cobra.Command{
		Use:   "cuentadinos",
		Short: "🦖 Cuentos mágicos de dinosaurios para dormir",
		Long: `
┌──────────────────────────────────────┐
│  🦖 ¡Bienvenido a Cuenta Dinos! 🌙  │
│  Cuentos mágicos de dinosaurios      │
│  narrados en voz alta 👶✨          │
└──────────────────────────────────────┘

Cuenta Dinos generates short bedtime stories about dinosaurs and reads
them aloud, paragraph by paragraph, with no gaps in between. 🌙
		`,
		Run: func(cmd *cobra.Command, args []string) {
			showWelcome()
		},
	}

	// Serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "🌐 Run the story and speech gateway",
		Long:  "Start the HTTP gateway that guards the story and speech synthesis endpoints",
		RunE:  runServe,
	}
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides config)")

	// Play command
	playCmd := &cobra.Command{
		Use:   "play",
		Short: "📖 Create a story and read it aloud",
		Long:  "Pick a dinosaur, a style and a lesson, generate a story and listen to it",
		RunE:  runPlay,
	}
	playCmd.Flags().StringP("dinosaur", "d", "", "Dinosaur ID or name (see 'options')")
	playCmd.Flags().StringP("style", "s", "", "Story style ID or name")
	playCmd.Flags().StringP("lesson", "l", "", "Lesson ID or name")
	playCmd.Flags().String("server", "http://localhost:8888", "Gateway base URL")
	playCmd.Flags().Bool("text-only", false, "Print the story without reading it aloud")

	// Speak command
	speakCmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "🔊 Read arbitrary text aloud",
		Long:  "Read the given text (or stdin) aloud through the speech gateway",
		RunE:  runSpeak,
	}
	speakCmd.Flags().String("server", "http://localhost:8888", "Gateway base URL")

	// Options command
	optionsCmd := &cobra.Command{
		Use:   "options",
		Short: "📋 List dinosaurs, styles and lessons",
		Run: func(cmd *cobra.Command, args []string) {
			listOptions()
		},
	}

	rootCmd.AddCommand(serveCmd, playCmd, speakCmd, optionsCmd)

	if err := rootCmd.Execute(); err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	viper.SetConfigName("cuentadinos")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.cuentadinos")
	viper.AddConfigPath(".")
	viper.ReadInConfig()
}

func showWelcome() {
	fmt.Println()
	colours.Title.Println("🌟 ¡Bienvenido a Cuenta Dinos! 🌟")
	fmt.Println()
	colours.Info.Println("📚 Available commands:")
	fmt.Println("  • cuentadinos play     - Create and listen to a story")
	fmt.Println("  • cuentadinos speak    - Read any text aloud")
	fmt.Println("  • cuentadinos options  - List dinosaurs, styles and lessons")
	fmt.Println("  • cuentadinos serve    - Run the gateway server")
	fmt.Println()
	colours.Prompt.Println("✨ ¿Listo para una aventura prehistórica? ✨")
}

func listOptions() {
	fmt.Println()
	colours.Title.Println("🦖 Dinosaurs")
	for _, opt := range tale.Dinosaurs {
		fmt.Printf("  • %-15s %s (%s)\n", opt.ID, opt.Name, opt.Description)
	}
	fmt.Println()
	colours.Title.Println("📖 Styles")
	for _, opt := range tale.Styles {
		fmt.Printf("  • %-15s %s (%s)\n", opt.ID, opt.Name, opt.Description)
	}
	fmt.Println()
	colours.Title.Println("💡 Lessons")
	for _, opt := range tale.Lessons {
		fmt.Printf("  • %-15s %s (%s)\n", opt.ID, opt.Name, opt.Description)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using system environment")
	} else {
		logrus.Info("loaded environment from .env")
	}

	synth, err := buildSynthesizer(cmd.Context())
	if err != nil {
		return err
	}

	composer := buildComposer()

	window := time.Minute
	storyGate := gateway.New(gateway.Config{
		Strict:         viper.GetBool("security.strict"),
		AllowPreviews:  viper.GetBool("security.allow_previews"),
		AllowedOrigins: allowlist(),
		Limit:          viper.GetInt("ratelimit.story_per_min"),
		Window:         window,
	})
	audioGate := gateway.New(gateway.Config{
		Strict:         viper.GetBool("security.strict"),
		AllowPreviews:  viper.GetBool("security.allow_previews"),
		AllowedOrigins: allowlist(),
		Limit:          viper.GetInt("ratelimit.audio_per_min"),
		Window:         window,
	})

	srv := server.New(server.Config{
		Composer:    composer,
		Synthesizer: synth,
		StoryGate:   storyGate,
		AudioGate:   audioGate,
		MaxAudioKB:  viper.GetFloat64("audio.max_kb"),
	})

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = viper.GetString("server.addr")
	}
	return srv.ListenAndServe(addr)
}

// allowlist combines the development defaults with the configured origins.
func allowlist() []string {
	origins := []string{"http://localhost:5173", "http://localhost:8888"}
	return append(origins, config.AllowedOrigins()...)
}

func clarifaiConfig() backend.ClarifaiConfig {
	return backend.ClarifaiConfig{
		APIKey:         viper.GetString("clarifai.api_key"),
		UserID:         viper.GetString("clarifai.user_id"),
		AppID:          viper.GetString("clarifai.app_id"),
		ModelID:        viper.GetString("clarifai.model_id"),
		ModelVersionID: viper.GetString("clarifai.model_version_id"),
	}
}

func buildComposer() backend.Composer {
	if viper.GetString("synthesis.engine") == "mock" {
		return backend.NewMock()
	}
	return backend.NewClarifai(clarifaiConfig())
}

func buildSynthesizer(ctx context.Context) (backend.Synthesizer, error) {
	switch engine := viper.GetString("synthesis.engine"); engine {
	case "clarifai":
		return backend.NewClarifai(clarifaiConfig()), nil
	case "google":
		return backend.NewGoogleSynthesizer(ctx,
			viper.GetString("synthesis.language"),
			viper.GetString("synthesis.voice"))
	case "mock":
		return backend.NewMock(), nil
	default:
		return nil, fmt.Errorf("unsupported synthesis engine: %s", engine)
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	serverURL, _ := cmd.Flags().GetString("server")
	textOnly, _ := cmd.Flags().GetBool("text-only")

	dino, err := pickOption(cmd, "dinosaur", tale.Dinosaurs, "🦖 Elige tu dinosaurio")
	if err != nil {
		return err
	}
	style, err := pickOption(cmd, "style", tale.Styles, "📖 Elige el estilo del cuento")
	if err != nil {
		return err
	}
	lesson, err := pickOption(cmd, "lesson", tale.Lessons, "💡 ¿Qué lección quieres enseñar?")
	if err != nil {
		return err
	}

	c := client.New(serverURL)

	fmt.Println()
	colours.Info.Printf("✨ %s está preparando una historia de %s sobre %s...\n",
		dino.Name, strings.ToLower(style.Name), strings.ToLower(lesson.Name))

	story, err := c.GenerateStory(cmd.Context(), dino.Name, style.Name, lesson.Name)
	if err != nil {
		return fmt.Errorf("could not generate the story: %w", err)
	}

	fmt.Println()
	colours.Title.Println("📖 Tu cuento está listo")
	fmt.Println()
	colours.Story.Println(story)
	fmt.Println()

	if textOnly {
		return nil
	}

	return readAloud(c, story)
}

func runSpeak(cmd *cobra.Command, args []string) error {
	serverURL, _ := cmd.Flags().GetString("server")

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("could not read stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		return fmt.Errorf("nothing to read: pass text as an argument or on stdin")
	}

	return readAloud(client.New(serverURL), text)
}

// readAloud runs the playback engine over the story text: concurrent segment
// loads, strictly ordered playback, Ctrl+C to stop.
func readAloud(fetcher playback.Fetcher, story string) error {
	device := playback.NewSpeakerDevice()
	player = playback.NewPlayer(playback.NewLoader(fetcher), device)
	player.SetPause(viper.GetDuration("playback.segment_pause"))
	player.SetPrimeDuration(viper.GetDuration("playback.prime_duration"))

	player.OnSegment(func(index, total int) {
		colours.Info.Printf("🔊 Leyendo párrafo %d/%d...\n", index+1, total)
	})

	colours.Success.Printf("🎵 Starting playback of %d paragraphs... 🎵\n", len(playback.Split(story)))
	fmt.Println("💡 Press Ctrl+C to stop anytime")
	fmt.Println()

	if err := player.Play(story); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	colours.Success.Println("✅ ¡Fin del cuento! 🌟")
	colours.Prompt.Println("😴 ¡Que duermas bien! 🌙")
	return nil
}

// pickOption resolves a selection flag, falling back to an interactive
// numbered list when the flag is empty.
func pickOption(cmd *cobra.Command, flag string, options []tale.Option, title string) (tale.Option, error) {
	value, _ := cmd.Flags().GetString(flag)
	if value != "" {
		opt, ok := tale.Find(options, value)
		if !ok {
			return tale.Option{}, fmt.Errorf("unknown %s: %q (see 'cuentadinos options')", flag, value)
		}
		return opt, nil
	}

	fmt.Println()
	colours.Title.Println(title)
	fmt.Println()
	for i, opt := range options {
		fmt.Printf("%d. ", i+1)
		colours.Prompt.Printf("%s", opt.Name)
		fmt.Printf(" - %s\n", opt.Description)
	}

	fmt.Println()
	colours.Prompt.Print("🌟 Enter a number (or 'q' to quit): ")

	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	if input == "q" || input == "quit" {
		return tale.Option{}, fmt.Errorf("cancelled")
	}

	choice, err := strconv.Atoi(input)
	if err != nil || choice < 1 || choice > len(options) {
		return tale.Option{}, fmt.Errorf("invalid selection: %q", input)
	}

	return options[choice-1], nil
}
