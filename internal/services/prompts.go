package services

import (
	"fmt"
	"strings"

	"github.com/euii-ii/ContentCapsule/internal/models"
)

// PromptLimits caps how much source text reaches the model.
type PromptLimits struct {
	TranscriptChars  int
	DescriptionChars int
}

func DefaultPromptLimits() PromptLimits {
	return PromptLimits{TranscriptChars: 8000, DescriptionChars: 500}
}

// truncate keeps the first n characters of s. Counts runes, not bytes.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func videoContextBlock(meta *models.VideoMetadata, limits PromptLimits) string {
	tags := "None"
	if len(meta.Tags) > 0 {
		tags = strings.Join(meta.Tags, ", ")
	}

	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "Video Title: %s\n", meta.Title)
	fmt.Fprintf(&b, "Channel: %s\n", meta.ChannelTitle)
	fmt.Fprintf(&b, "Published: %s\n", meta.PublishedAt)
	fmt.Fprintf(&b, "Duration: %s\n", meta.Duration)
	fmt.Fprintf(&b, "Views: %d\n", meta.ViewCount)
	fmt.Fprintf(&b, "Likes: %d\n", meta.LikeCount)
	fmt.Fprintf(&b, "Description: %s...\n", truncate(meta.Description, limits.DescriptionChars))
	fmt.Fprintf(&b, "Tags: %s\n", tags)
	return b.String()
}

// BuildEnhancedPrompt combines the metadata block with the transcript.
func BuildEnhancedPrompt(ct models.ContentType, transcript string, meta *models.VideoMetadata, limits PromptLimits) (string, error) {
	var b strings.Builder

	switch ct {
	case models.ContentStudyGuide:
		b.WriteString("Create a comprehensive study guide for this YouTube video. Use both the video metadata and transcript to create detailed content.\n\n")
		b.WriteString("VIDEO INFORMATION:\n")
		b.WriteString(videoContextBlock(meta, limits))
		b.WriteString("\n\nINSTRUCTIONS:\nCreate a study guide with the following sections:\n")
		b.WriteString("1. **Video Overview** - Summary of the video including title, channel, and key details\n")
		b.WriteString("2. **Main Topics & Key Concepts** - Core subjects covered\n")
		b.WriteString("3. **Important Definitions** - Key terms and their meanings\n")
		b.WriteString("4. **Detailed Content Breakdown** - Section-by-section analysis\n")
		b.WriteString("5. **Key Takeaways** - Most important points to remember\n")
		b.WriteString("6. **Study Questions** - Questions to test understanding\n")
		b.WriteString("7. **Additional Resources** - Related topics to explore\n\n")
		b.WriteString("Format the response in clear markdown with proper headings and bullet points.\n\n")
	case models.ContentBriefingDoc:
		b.WriteString("Create a professional briefing document for this YouTube video. Use both the video metadata and transcript to create comprehensive content.\n\n")
		b.WriteString("VIDEO INFORMATION:\n")
		b.WriteString(videoContextBlock(meta, limits))
		b.WriteString("\n\nINSTRUCTIONS:\nCreate a briefing document with the following sections:\n")
		b.WriteString("1. **Executive Summary** - High-level overview of the video content\n")
		b.WriteString("2. **Video Details** - Title, channel, metrics, and publication info\n")
		b.WriteString("3. **Content Analysis** - Detailed breakdown of the video content\n")
		b.WriteString("4. **Key Points & Insights** - Most important information presented\n")
		b.WriteString("5. **Main Arguments/Findings** - Core messages and conclusions\n")
		b.WriteString("6. **Actionable Recommendations** - What viewers should do with this information\n")
		b.WriteString("7. **Conclusion** - Summary and final thoughts\n")
		b.WriteString("8. **Appendix** - Additional details and context\n\n")
		b.WriteString("Format as a professional briefing document in markdown.\n\n")
	default:
		return "", invalidTypeError()
	}

	b.WriteString("VIDEO TRANSCRIPT:\n")
	b.WriteString(truncate(transcript, limits.TranscriptChars))
	return b.String(), nil
}

// BuildStandardPrompt uses the transcript alone.
func BuildStandardPrompt(ct models.ContentType, transcript string, limits PromptLimits) (string, error) {
	var b strings.Builder

	switch ct {
	case models.ContentStudyGuide:
		b.WriteString("Create a comprehensive study guide based on this YouTube video transcript. Include:\n\n")
		b.WriteString("1. **Main Topics & Key Concepts**\n")
		b.WriteString("2. **Important Definitions**\n")
		b.WriteString("3. **Key Takeaways**\n")
		b.WriteString("4. **Study Questions**\n")
		b.WriteString("5. **Summary Points**\n")
		b.WriteString("6. **Additional Resources to Explore**\n\n")
		b.WriteString("Format the response in clear markdown with proper headings and bullet points.\n\n")
	case models.ContentBriefingDoc:
		b.WriteString("Create a professional briefing document based on this YouTube video transcript. Include:\n\n")
		b.WriteString("1. **Executive Summary**\n")
		b.WriteString("2. **Key Points & Insights**\n")
		b.WriteString("3. **Main Arguments/Findings**\n")
		b.WriteString("4. **Actionable Recommendations**\n")
		b.WriteString("5. **Conclusion**\n")
		b.WriteString("6. **Next Steps**\n\n")
		b.WriteString("Format as a professional briefing document in markdown.\n\n")
	default:
		return "", invalidTypeError()
	}

	b.WriteString("Transcript: ")
	b.WriteString(truncate(transcript, limits.TranscriptChars))
	return b.String(), nil
}

// BuildChatPrompt picks one of three variants depending on how much video
// context is available.
func BuildChatPrompt(message, videoURL, videoTitle, transcript string, limits PromptLimits) string {
	var b strings.Builder

	switch {
	case transcript != "" && videoTitle != "":
		b.WriteString("You are an AI assistant helping users understand and analyze YouTube videos. \n\n")
		b.WriteString("The user is asking about this video:\n")
		fmt.Fprintf(&b, "Title: \"%s\"\n", videoTitle)
		fmt.Fprintf(&b, "URL: %s\n\n", videoURL)
		fmt.Fprintf(&b, "Video Transcript (first %d characters):\n", limits.TranscriptChars)
		b.WriteString(truncate(transcript, limits.TranscriptChars))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "User Question: \"%s\"\n\n", message)
		b.WriteString("Please provide a helpful, accurate response based on the video content. If the question is about specific details in the video, reference the transcript. If it's a general question, provide useful information while acknowledging the video context.\n\n")
		b.WriteString("Guidelines:\n")
		b.WriteString("- Be conversational and helpful\n")
		b.WriteString("- Reference specific parts of the video when relevant\n")
		b.WriteString("- If you can't find the answer in the transcript, say so clearly\n")
		b.WriteString("- Provide actionable insights when possible\n")
		b.WriteString("- Keep responses focused and well-structured\n")
		b.WriteString("- Use markdown formatting for better readability")
	case videoURL != "" && videoTitle != "":
		b.WriteString("You are an AI assistant helping users with YouTube videos.\n\n")
		fmt.Fprintf(&b, "The user has selected this video: \"%s\" (%s)\n\n", videoTitle, videoURL)
		b.WriteString("However, I couldn't access the video transcript (it may not have captions or may not be publicly available).\n\n")
		fmt.Fprintf(&b, "User Question: \"%s\"\n\n", message)
		b.WriteString("Please provide a helpful response. Since I don't have access to the video content, I'll:\n")
		b.WriteString("- Acknowledge that I can't analyze the specific video content\n")
		b.WriteString("- Provide general helpful information related to their question\n")
		b.WriteString("- Suggest ways they might find the information they're looking for\n")
		b.WriteString("- Offer to help with other aspects of video analysis\n\n")
		b.WriteString("Be conversational, helpful, and honest about the limitations.")
	default:
		b.WriteString("You are an AI assistant for a YouTube Summary AI application.\n\n")
		b.WriteString("The user hasn't selected a specific YouTube video yet.\n\n")
		fmt.Fprintf(&b, "User Question: \"%s\"\n\n", message)
		b.WriteString("Please provide a helpful response. Since no video is selected:\n")
		b.WriteString("- Acknowledge that no video is currently selected\n")
		b.WriteString("- Provide general helpful information if their question is about YouTube, video analysis, or study methods\n")
		b.WriteString("- Suggest they select a YouTube video first if they want video-specific analysis\n")
		b.WriteString("- Offer guidance on how to use the application effectively\n\n")
		b.WriteString("Be conversational, helpful, and guide them toward productive use of the application.")
	}
	return b.String()
}

const noteContextChars = 2000

// BuildNoteAnalysisPrompt adds transcript context only when more than 100
// characters are available.
func BuildNoteAnalysisPrompt(note, videoURL, videoTitle, transcript string) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant helping to analyze and enhance user notes about a YouTube video.\n\n")
	fmt.Fprintf(&b, "Video: \"%s\"\n", videoTitle)
	fmt.Fprintf(&b, "URL: %s", videoURL)
	if len(transcript) > 100 {
		fmt.Fprintf(&b, "\n\nVideo Context (first %d characters):\n%s", noteContextChars, truncate(transcript, noteContextChars))
	}
	b.WriteString("\n\nUser's Note:\n")
	fmt.Fprintf(&b, "\"%s\"\n\n", note)
	b.WriteString("Please provide a helpful analysis of this note including:\n\n")
	b.WriteString("1. **Key Insights**: What are the main points or insights in this note?\n")
	b.WriteString("2. **Connections**: How does this note relate to the video content?\n")
	b.WriteString("3. **Suggestions**: What additional points or questions might be worth exploring?\n")
	b.WriteString("4. **Organization**: How could this note be structured or categorized?\n")
	b.WriteString("5. **Action Items**: Are there any actionable takeaways or next steps?\n\n")
	b.WriteString("Format your response in clear markdown with proper headings. Be concise but insightful.")
	return b.String()
}

func invalidTypeError() error {
	return &ValidationError{
		Message: `Invalid type. Must be "study-guide" or "briefing-doc"`,
		Fields:  map[string]string{"type": "must be study-guide or briefing-doc"},
	}
}
