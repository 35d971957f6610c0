package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ByLCY/folio/images"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	"github.com/ByLCY/folio/renderer/preview"
	"github.com/ByLCY/folio/source"
)

// options 汇总命令行参数。
type options struct {
	input   string
	profile string
	output  string
	debug   string
	plan    bool
	preview string
	assets  string
	cache   string
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "in", "examples/catalog.csv", "商品记录文件（.csv/.json/.yaml）")
	flag.StringVar(&opts.profile, "profile", "", "版式配置文件路径，为空时使用默认 A4 版式")
	flag.StringVar(&opts.output, "out", "output/catalog.pdf", "PDF 输出路径")
	flag.StringVar(&opts.debug, "debug", "", "排版计划输出路径（.json 完整计划，.yaml 摘要）")
	flag.BoolVar(&opts.plan, "plan", false, "在终端打印分页摘要")
	flag.StringVar(&opts.preview, "preview", "", "逐页 PNG 预览输出目录")
	flag.StringVar(&opts.assets, "assets", "", "相对路径资源（图片、字体）的基准目录，默认为记录文件所在目录")
	flag.StringVar(&opts.cache, "cache", "", "远程图片下载目录，默认使用临时目录")
	flag.Parse()

	if opts.assets == "" {
		opts.assets = filepath.Dir(opts.input)
	}
	r := canvasrenderer.NewRenderer(opts.assets)
	res, err := run(opts, r)
	if err != nil {
		log.Fatalf("生成目录失败: %v", err)
	}
	for _, w := range res.Warnings {
		log.Printf("警告 [%s] 第 %d 页: %s", w.Code, w.Page, w.Message)
	}
	if opts.plan {
		fmt.Println(renderSummary(res))
	}
	fmt.Printf("已生成 PDF：%s（%d 页）\n", opts.output, len(res.Pages))
}

// run 串联读取、排版与渲染：配置 → 记录 → 排版计划 → PDF（与可选的调试输出、预览）。
func run(opts options, r renderer.Measuring) (*layout.Result, error) {
	if r == nil {
		return nil, fmt.Errorf("renderer 不能为空")
	}
	profile := layout.DefaultProfile()
	if opts.profile != "" {
		p, err := layout.LoadProfileFile(opts.profile)
		if err != nil {
			return nil, fmt.Errorf("加载版式配置失败: %w", err)
		}
		profile = p
	}

	records, err := source.Load(opts.input)
	if err != nil {
		return nil, err
	}

	resolver := images.NewResolver(images.Options{BaseDir: opts.assets, CacheDir: opts.cache})
	result, err := layout.Build(records, layout.BuildOptions{
		Measurer: r,
		Images:   resolver,
		Profile:  profile,
	})
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}

	if opts.debug != "" {
		if err := writeDebug(result, opts.debug); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(result)
	if err != nil {
		return nil, fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(opts.output, pdfBytes, 0o644); err != nil {
		return nil, fmt.Errorf("写入 PDF 文件失败: %w", err)
	}

	if opts.preview != "" {
		pv := preview.NewRenderer(opts.assets, preview.DefaultScale)
		if _, err := pv.WritePages(result, opts.preview); err != nil {
			return nil, fmt.Errorf("输出预览失败: %w", err)
		}
	}
	return result, nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WritePlan(result, debugPath); err != nil {
		return fmt.Errorf("输出排版计划失败: %w", err)
	}
	return nil
}
