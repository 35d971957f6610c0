package renderer

import "github.com/ByLCY/folio/layout"

// Renderer 将排版计划输出为最终文件，例如 PDF 或预览图。
// Render 返回生成的二进制数据以及可能的错误；页脚内容取自每页的 FooterContext。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Measuring 是既能渲染又能测量文字的后端。排版阶段用它测量，
// 渲染阶段使用同一套字体，两边宽度一致。
type Measuring interface {
	Renderer
	layout.Measurer
}
