// ABOUTME: Prompt builders for the daily article and title/cover completions

package summarizer

import "fmt"

const articleSystemPrompt = "你是一位资深的区块链行业分析师和深度内容创作者,擅长撰写详实、有洞察力的行业观察文章。你的文章信息量大、分析深入,深受专业读者喜爱。"

// buildArticlePrompt assembles the user prompt for the daily article.
func buildArticlePrompt(newsText, dateStr string) string {
	return fmt.Sprintf(`请将以下区块链新闻整理成一篇**深度、详细**的每日观察博客文章。

日期: %s

新闻内容:
%s

请按以下要求处理:

1. **文章长度**: 目标8000-10000字，详细展开每条新闻的背景、影响和分析

2. **文章结构**:
   a) 开篇总结 (500-800字)：提炼今日核心主题和趋势
   b) 分类深度报道，每个板块用二级标题(##)：
      - 📊 市场动态
      - 🏛️ 政策监管
      - 💰 DeFi生态
      - 🎨 NFT与链游
      - 🔧 技术创新
      - 💼 投融资
      - 🌐 行业动态
   c) 深度分析 (1000-1500字)：关联性分析、趋势影响、机会与风险

3. **内容深度**: 重要新闻用150-300字展开，次要新闻用80-150字概括，引用数据支撑观点

4. **格式要求**: Markdown格式，板块用二级标题(##)，重要新闻用三级标题(###)，关键数据用**粗体**

请直接输出Markdown格式的文章内容。`, dateStr, newsText)
}

// buildTitleCoverPrompt assembles the prompt for the best-effort
// attractive-title and cover-prompt completion.
func buildTitleCoverPrompt(content, dateStr string) string {
	preview := []rune(content)
	if len(preview) > 1500 {
		preview = preview[:1500]
	}

	return fmt.Sprintf(`根据以下区块链日报内容，生成一个吸引眼球的标题和一个封面图生成提示词。

日期: %s

文章内容:
%s

直接返回JSON对象，格式如下:
{
  "attractive_title": "有吸引力的中文标题（20字以内）",
  "cover_prompt": "Detailed English image-generation prompt for a 16:9 YouTube cover with the Chinese title rendered prominently"
}

只输出JSON对象，不要其他文字。`, dateStr, string(preview))
}

// defaultCoverPrompt is the static cover prompt used when the title/cover
// completion fails.
func defaultCoverPrompt(dateStr string) string {
	return fmt.Sprintf("Create a professional 16:9 YouTube cover image for a daily blockchain news digest dated %s. "+
		"Dark blue to purple gradient background, large bold Chinese title '区块链每日观察' in white at top center, "+
		"floating cryptocurrency coins and chart icons, gold accent highlights, modern business presentation style, "+
		"high contrast, clean and professional.", dateStr)
}
