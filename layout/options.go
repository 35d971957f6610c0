package layout

// BuildOptions 配置排版阶段所需的外部协作者与版式配置。
type BuildOptions struct {
	Measurer Measurer
	Images   ImageResolver // 为空时所有图片按缺失处理
	Profile  *Profile      // 为空时使用 DefaultProfile
}

// Measurer 返回文本以给定字体与字号（pt）渲染后的宽度（pt）。
// 实现必须对字符串长度单调，截断循环依赖这一点终止。
type Measurer interface {
	MeasureText(s string, font FontResource, sizePt float64) float64
}

// MeasureFunc 让普通函数满足 Measurer。
type MeasureFunc func(s string, font FontResource, sizePt float64) float64

// MeasureText implements Measurer.
func (f MeasureFunc) MeasureText(s string, font FontResource, sizePt float64) float64 {
	return f(s, font, sizePt)
}

// ImageResolver 将图片引用解析为本地路径；ok=false 表示图片缺失，不是错误。
type ImageResolver interface {
	Resolve(ref string) (path string, ok bool)
}
